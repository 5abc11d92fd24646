package selector

import (
	"regexp"
	"strings"
)

// fitRule adds a pattern-specific bonus based on surface features of the text.
type fitRule struct {
	re      *regexp.Regexp
	perHit  float64
	once    bool // bonus applies once when any match exists
	literal func(text string) bool
}

func (r fitRule) bonus(text string) float64 {
	if r.literal != nil {
		if r.literal(text) {
			return r.perHit
		}
		return 0
	}
	if r.once {
		if r.re.MatchString(text) {
			return r.perHit
		}
		return 0
	}
	return float64(len(r.re.FindAllStringIndex(text, -1))) * r.perHit
}

var contentFit = map[string]fitRule{
	"number-emphasis": {re: regexp.MustCompile(`\d+[%％億万円]`), perHit: 2},
	"comparison":      {re: regexp.MustCompile(`(?i)\bvs\.?(?:\s|$)|\bversus\b|比較|対比`), perHit: 5, once: true},
	"steps":           {re: regexp.MustCompile(`(?i)ステップ|手順|段階|\bsteps?\b`), perHit: 2},
	"timeline":        {re: regexp.MustCompile(`(?i)時系列|タイムライン|履歴|\btimeline\b`), perHit: 2},
	"photo-visual":    {re: regexp.MustCompile(`(?i)画像|写真|図|ビジュアル|\b(?:image|photo)s?\b`), perHit: 2},
	"storytelling":    {re: regexp.MustCompile(`(?i)事例|ストーリー|体験|物語|\bstor(?:y|ies)\b`), perHit: 2},
	"table": {perHit: 3, literal: func(text string) bool {
		return strings.Contains(text, "```") || strings.Contains(text, "|")
	}},
	"checklist": {re: regexp.MustCompile(`(?i)チェック|確認|要件|項目|\bchecklist\b`), perHit: 1.5},
}

// titleBonus favours a pattern when the section title names its shape.
type titleBonus struct {
	re        *regexp.Regexp
	patternID string
	bonus     float64
}

var titleBonuses = []titleBonus{
	{regexp.MustCompile(`(?i)まとめ|\bsummary\b|\brecap\b`), "bullet-list", 3},
	{regexp.MustCompile(`(?i)比較|\bcomparison\b|\bvs\.?(?:\s|$)`), "comparison", 5},
	{regexp.MustCompile(`(?i)手順|\bprocedure\b|\bhow to\b`), "steps", 5},
}

func fitBonus(patternID, text string) float64 {
	rule, ok := contentFit[patternID]
	if !ok {
		return 0
	}
	return rule.bonus(text)
}

func titleFit(patternID, title string) (float64, bool) {
	if title == "" {
		return 0, false
	}
	for _, tb := range titleBonuses {
		if tb.patternID == patternID && tb.re.MatchString(title) {
			return tb.bonus, true
		}
	}
	return 0, false
}
