package analysis

import "mdslides/internal/types"

// PrincipleCategory groups the working principles found in the idea analysis.
type PrincipleCategory string

const (
	PrincipleEfficiency       PrincipleCategory = "efficiency"
	PrincipleCriticalThinking PrincipleCategory = "critical-thinking"
	PrincipleStructured       PrincipleCategory = "structured-approach"
)

// Principle is one working principle with a 1-10 importance.
type Principle struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    PrincipleCategory `json:"category"`
	Importance  int               `json:"importance"`
}

// Aspect is one rated facet of the critical-thinking framework.
type Aspect struct {
	Name    string         `json:"name"`
	Ratings map[string]int `json:"ratings"`
}

// Framework is the critical-thinking framework: technical, business and
// user-experience aspects.
type Framework struct {
	Technical      []Aspect `json:"technical"`
	Business       []Aspect `json:"business"`
	UserExperience []Aspect `json:"user_experience"`
}

// Empty reports whether no aspect was found.
func (f Framework) Empty() bool {
	return len(f.Technical) == 0 && len(f.Business) == 0 && len(f.UserExperience) == 0
}

// Criteria are the evaluation criteria named anywhere in the document.
type Criteria struct {
	Technical      []string `json:"technical"`
	Business       []string `json:"business"`
	UserExperience []string `json:"user_experience"`
}

// IdeaAnalysis is the output of the idea-analysis stage.
type IdeaAnalysis struct {
	Principles []Principle         `json:"principles"`
	Framework  Framework           `json:"framework"`
	Criteria   Criteria            `json:"criteria"`
	Types      []types.ContentType `json:"types"`
	Defaulted  bool                `json:"defaulted"`
}

type principleRule struct {
	principle Principle
	keywords  []string
}

// Rules applied to the content of the basic-approach section.
var approachRules = []principleRule{
	{
		principle: Principle{
			Name:        "Efficiency and practicality",
			Description: "Prefer ideas that can be built and solve a real problem, weighing feasibility against return on investment",
			Category:    PrincipleEfficiency,
			Importance:  9,
		},
		keywords: []string{"効率性", "実用性", "efficiency", "practical"},
	},
	{
		principle: Principle{
			Name:        "Critical thinking",
			Description: "Challenge ideas constructively and identify problems and constraints early",
			Category:    PrincipleCriticalThinking,
			Importance:  8,
		},
		keywords: []string{"批判", "critical"},
	},
	{
		principle: Principle{
			Name:        "Structured approach",
			Description: "Break ideas down into concrete, buildable pieces through a staged workflow",
			Category:    PrincipleStructured,
			Importance:  9,
		},
		keywords: []string{"構造化", "ワークフロー", "structured", "workflow"},
	},
}

// Rules applied to every section title.
var titleRules = []principleRule{
	{
		principle: Principle{
			Name:        "Continuous improvement",
			Description: "Iterate on feedback and verify and adjust after delivery",
			Category:    PrincipleStructured,
			Importance:  7,
		},
		keywords: []string{"改善", "イテレーション", "improvement", "iteration"},
	},
	{
		principle: Principle{
			Name:        "Collaborative communication",
			Description: "Discuss actively with the team and explain at the right level for each stakeholder",
			Category:    PrincipleStructured,
			Importance:  6,
		},
		keywords: []string{"コミュニケーション", "communication"},
	},
}

type criterion struct {
	label    string
	keywords []string
}

var (
	technicalCriteria = []criterion{
		{"feasibility", []string{"実現可能性", "feasibility"}},
		{"scalability", []string{"拡張性", "scalability"}},
		{"maintainability", []string{"保守性", "maintainability"}},
		{"performance", []string{"パフォーマンス", "performance"}},
		{"tech stack fit", []string{"技術スタック", "tech stack"}},
		{"security", []string{"セキュリティ", "security"}},
	}
	businessCriteria = []criterion{
		{"value", []string{"価値提供", "value proposition"}},
		{"differentiation", []string{"差別化", "differentiation"}},
		{"implementation cost", []string{"コスト", "cost"}},
		{"risk management", []string{"リスク", "risk"}},
		{"return on investment", []string{"roi", "投資対効果"}},
		{"market fit", []string{"市場", "market"}},
	}
	uxCriteria = []criterion{
		{"usability", []string{"使いやすさ", "ユーザビリティ", "usability"}},
		{"accessibility", []string{"アクセシビリティ", "accessibility"}},
		{"reliability", []string{"信頼性", "reliability"}},
		{"learning cost", []string{"学習コスト", "learning curve"}},
		{"intuitiveness", []string{"直感的", "intuitive"}},
	}
)

// AnalyzeIdea extracts principles, the critical-thinking framework and the
// evaluation criteria from the idea analysis document.
func (a *Analyzer) AnalyzeIdea(doc *types.Document) IdeaAnalysis {
	cls := a.cls.ClassifyDocument(doc)
	return IdeaAnalysis{
		Principles: extractPrinciples(doc),
		Framework:  extractFramework(doc),
		Criteria:   extractCriteria(doc),
		Types:      cls.Types,
		Defaulted:  cls.Defaulted,
	}
}

func extractPrinciples(doc *types.Document) []Principle {
	var out []Principle
	seen := make(map[string]bool)
	add := func(p Principle) {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p)
		}
	}

	basic, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "基本", "principle", "approach")
	})
	if ok {
		for _, r := range approachRules {
			if containsAny(basic.Content, r.keywords...) {
				add(r.principle)
			}
		}
	}

	for _, s := range doc.Sections {
		for _, r := range titleRules {
			if containsAny(s.Title, r.keywords...) {
				add(r.principle)
			}
		}
	}
	return out
}

func extractFramework(doc *types.Document) Framework {
	var f Framework
	eval, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "評価", "観点", "evaluation", "perspective")
	})
	if !ok {
		return f
	}

	if containsAny(eval.Content, "技術", "technical") {
		f.Technical = append(f.Technical, Aspect{
			Name:    "Feasibility",
			Ratings: map[string]int{"feasibility": 9, "scalability": 8, "maintainability": 8, "performance": 7},
		})
	}
	if containsAny(eval.Content, "ビジネス", "business") {
		f.Business = append(f.Business, Aspect{
			Name:    "Business value",
			Ratings: map[string]int{"implementation_cost": 7, "risk": 6},
		})
	}
	if containsAny(eval.Content, "ユーザー体験", "ux", "user experience") {
		f.UserExperience = append(f.UserExperience, Aspect{
			Name:    "User experience",
			Ratings: map[string]int{"usability": 9, "accessibility": 8, "reliability": 9},
		})
	}
	return f
}

func extractCriteria(doc *types.Document) Criteria {
	var c Criteria
	match := func(list []string, table []criterion, content string) []string {
		for _, cr := range table {
			if containsAny(content, cr.keywords...) {
				list = appendUnique(list, cr.label)
			}
		}
		return list
	}
	for _, s := range doc.Sections {
		c.Technical = match(c.Technical, technicalCriteria, s.Content)
		c.Business = match(c.Business, businessCriteria, s.Content)
		c.UserExperience = match(c.UserExperience, uxCriteria, s.Content)
	}
	return c
}
