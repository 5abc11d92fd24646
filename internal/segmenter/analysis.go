package segmenter

import (
	"strings"
	"unicode/utf8"
)

// Tier is the layout complexity of a block of text.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Analysis is the size profile of a block of text.
type Analysis struct {
	Lines      int  `json:"lines"` // non-blank lines
	Chars      int  `json:"chars"` // runes
	CodeBlocks int  `json:"code_blocks"`
	LongLines  int  `json:"long_lines"`
	NeedsSplit bool `json:"needs_split"`
	Tier       Tier `json:"tier"`
}

// Analyze measures text against the split and tier thresholds.
func (s *Segmenter) Analyze(text string) Analysis {
	var a Analysis
	a.Chars = utf8.RuneCountInString(text)

	inFence := false
	fence := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		a.Lines++
		if utf8.RuneCountInString(line) > s.tuning.LongLineLength {
			a.LongLines++
		}
		if inFence {
			if closesFence(trimmed, fence) {
				inFence = false
			}
			continue
		}
		if f := openingFence(trimmed); f != "" {
			inFence = true
			fence = f
			a.CodeBlocks++
		}
	}

	t := s.tuning
	a.NeedsSplit = a.Lines > t.MaxLines ||
		a.Chars > t.MaxChars ||
		(a.CodeBlocks > 0 && a.Lines > t.CodeBlockLineLimit) ||
		a.LongLines > t.MaxLongLines

	score := 0
	if a.Lines > t.TierLineLimit {
		score += 2
	}
	if a.Chars > t.TierCharLimit {
		score += 2
	}
	if a.CodeBlocks > t.TierCodeBlocks {
		score += 3
	}
	switch {
	case score >= t.HighTierScore:
		a.Tier = TierHigh
	case score >= t.MediumTierScore:
		a.Tier = TierMedium
	default:
		a.Tier = TierLow
	}
	return a
}

// openingFence returns the fence marker when line opens a fenced code block.
func openingFence(trimmed string) string {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, marker) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, marker[:1]))
			return trimmed[:n]
		}
	}
	return ""
}

func closesFence(trimmed, fence string) bool {
	return strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == ""
}

// Paragraphs splits text on blank lines. Fenced code blocks are never split,
// even when they contain blank lines.
func Paragraphs(text string) []string {
	var (
		paras   []string
		cur     []string
		inFence bool
		fence   string
	)
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, "\n"))
			cur = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if inFence {
			cur = append(cur, line)
			if closesFence(trimmed, fence) {
				inFence = false
			}
			continue
		}
		if f := openingFence(trimmed); f != "" {
			inFence = true
			fence = f
			cur = append(cur, line)
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return paras
}
