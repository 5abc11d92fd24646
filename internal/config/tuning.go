package config

import "fmt"

// Tuning collects every weight and threshold used by the pipeline heuristics.
// Components receive the sub-struct they need at construction time.
type Tuning struct {
	Parser     ParserTuning     `yaml:"parser"`
	Classifier ClassifierTuning `yaml:"classifier"`
	Selector   SelectorTuning   `yaml:"selector"`
	Optimizer  OptimizerTuning  `yaml:"optimizer"`
	Segmenter  SegmenterTuning  `yaml:"segmenter"`
	Analysis   AnalysisTuning   `yaml:"analysis"`
}

// ParserTuning configures markdown sectioning and word counting.
type ParserTuning struct {
	// Headings deeper than this stay inside the enclosing section's content.
	MaxSectionLevel int `yaml:"max_section_level"`
	// Reading speed used for document metadata.
	ReadingWordsPerMinute int `yaml:"reading_words_per_minute"`
	// CJK characters counted as one word.
	CJKCharsPerWord float64 `yaml:"cjk_chars_per_word"`
}

// ClassifierTuning configures the keyword and detector thresholds.
type ClassifierTuning struct {
	KeywordThreshold        int `yaml:"keyword_threshold"`
	NumericThreshold        int `yaml:"numeric_threshold"`
	StructuralThreshold     int `yaml:"structural_threshold"`
	TemporalThreshold       int `yaml:"temporal_threshold"`
	OrganizationalThreshold int `yaml:"organizational_threshold"`
	NarrativeThreshold      int `yaml:"narrative_threshold"`
}

// ScoreWeights are the four weights of the pattern score.
type ScoreWeights struct {
	Effectiveness    float64 `yaml:"effectiveness"`
	CategoryMatch    float64 `yaml:"category_match"`
	UseCaseRelevance float64 `yaml:"use_case_relevance"`
	Complexity       float64 `yaml:"complexity"`
}

// SelectorTuning configures pattern scoring and mapping.
type SelectorTuning struct {
	Weights         ScoreWeights `yaml:"weights"`
	CategoryBonus   float64      `yaml:"category_bonus"`
	UseCaseBonus    float64      `yaml:"use_case_bonus"`
	TopPerType      int          `yaml:"top_per_type"`
	MaxAlternatives int          `yaml:"max_alternatives"`
	LowConfidence   float64      `yaml:"low_confidence"`
	// A pattern selected for more than this share of sections is reported as overused.
	OveruseShare float64 `yaml:"overuse_share"`
}

// OptimizerTuning configures the three flow passes.
type OptimizerTuning struct {
	VarietyDivisor          int     `yaml:"variety_divisor"`
	ComplexityCeiling       float64 `yaml:"complexity_ceiling"`
	ComplexitySwapThreshold float64 `yaml:"complexity_swap_threshold"`
	MaxRounds               int     `yaml:"max_rounds"`
}

// SegmenterTuning configures slide splitting, timing and styling.
type SegmenterTuning struct {
	MaxLines           int `yaml:"max_lines"`
	MaxChars           int `yaml:"max_chars"`
	CodeBlockLineLimit int `yaml:"code_block_line_limit"`
	LongLineLength     int `yaml:"long_line_length"`
	MaxLongLines       int `yaml:"max_long_lines"`

	WordsPerMinute     int `yaml:"words_per_minute"`
	MinSectionMinutes  int `yaml:"min_section_minutes"`
	MinFragmentMinutes int `yaml:"min_fragment_minutes"`

	OverviewItems      int `yaml:"overview_items"`
	OverviewSentences  int `yaml:"overview_sentences"`
	MinSentenceLength  int `yaml:"min_sentence_length"`
	StatementMinLength int `yaml:"statement_min_length"`
	CenterMaxLines     int `yaml:"center_max_lines"`

	// Complexity tier scoring
	TierLineLimit   int `yaml:"tier_line_limit"`
	TierCharLimit   int `yaml:"tier_char_limit"`
	TierCodeBlocks  int `yaml:"tier_code_blocks"`
	HighTierScore   int `yaml:"high_tier_score"`
	MediumTierScore int `yaml:"medium_tier_score"`
}

// AnalysisTuning configures the idea-analysis and draft-structure stages.
type AnalysisTuning struct {
	TimeBudgetMinutes int `yaml:"time_budget_minutes"`
	MaxSections       int `yaml:"max_sections"`
	MinSummaryLength  int `yaml:"min_summary_length"`
	MinOverviewLength int `yaml:"min_overview_length"`
}

// DefaultTuning returns the stock heuristic constants.
func DefaultTuning() Tuning {
	return Tuning{
		Parser: ParserTuning{
			MaxSectionLevel:       3,
			ReadingWordsPerMinute: 200,
			CJKCharsPerWord:       2.5,
		},
		Classifier: ClassifierTuning{
			KeywordThreshold:        2,
			NumericThreshold:        3,
			StructuralThreshold:     1,
			TemporalThreshold:       2,
			OrganizationalThreshold: 1,
			NarrativeThreshold:      1,
		},
		Selector: SelectorTuning{
			Weights: ScoreWeights{
				Effectiveness:    0.3,
				CategoryMatch:    0.4,
				UseCaseRelevance: 0.2,
				Complexity:       0.1,
			},
			CategoryBonus:   10,
			UseCaseBonus:    2,
			TopPerType:      3,
			MaxAlternatives: 3,
			LowConfidence:   0.6,
			OveruseShare:    0.5,
		},
		Optimizer: OptimizerTuning{
			VarietyDivisor:          3,
			ComplexityCeiling:       2.5,
			ComplexitySwapThreshold: 3,
			MaxRounds:               8,
		},
		Segmenter: SegmenterTuning{
			MaxLines:           23,
			MaxChars:           800,
			CodeBlockLineLimit: 15,
			LongLineLength:     100,
			MaxLongLines:       5,

			WordsPerMinute:     100,
			MinSectionMinutes:  2,
			MinFragmentMinutes: 1,

			OverviewItems:      5,
			OverviewSentences:  3,
			MinSentenceLength:  10,
			StatementMinLength: 20,
			CenterMaxLines:     3,

			TierLineLimit:   15,
			TierCharLimit:   600,
			TierCodeBlocks:  1,
			HighTierScore:   5,
			MediumTierScore: 3,
		},
		Analysis: AnalysisTuning{
			TimeBudgetMinutes: 80,
			MaxSections:       8,
			MinSummaryLength:  20,
			MinOverviewLength: 10,
		},
	}
}

// Validate checks that tuning values are within usable ranges.
func (t Tuning) Validate() error {
	w := t.Selector.Weights
	if w.Effectiveness < 0 || w.CategoryMatch < 0 || w.UseCaseRelevance < 0 || w.Complexity < 0 {
		return fmt.Errorf("selector weights must be >= 0")
	}
	if t.Selector.TopPerType < 1 {
		return fmt.Errorf("selector.top_per_type must be >= 1")
	}
	if t.Selector.MaxAlternatives < 0 {
		return fmt.Errorf("selector.max_alternatives must be >= 0")
	}
	if t.Selector.LowConfidence < 0 || t.Selector.LowConfidence > 1 {
		return fmt.Errorf("selector.low_confidence must be in [0, 1]")
	}
	if t.Optimizer.VarietyDivisor < 1 {
		return fmt.Errorf("optimizer.variety_divisor must be >= 1")
	}
	if t.Optimizer.MaxRounds < 1 {
		return fmt.Errorf("optimizer.max_rounds must be >= 1")
	}
	if t.Segmenter.MaxLines < 1 || t.Segmenter.MaxChars < 1 {
		return fmt.Errorf("segmenter.max_lines and segmenter.max_chars must be >= 1")
	}
	if t.Segmenter.WordsPerMinute < 1 || t.Parser.ReadingWordsPerMinute < 1 {
		return fmt.Errorf("words-per-minute values must be >= 1")
	}
	if t.Parser.CJKCharsPerWord <= 0 {
		return fmt.Errorf("parser.cjk_chars_per_word must be > 0")
	}
	if t.Classifier.KeywordThreshold < 1 {
		return fmt.Errorf("classifier.keyword_threshold must be >= 1")
	}
	return nil
}
