package segmenter

import "mdslides/internal/types"

var patternLayouts = map[string]types.LayoutPattern{
	"comparison":      types.LayoutSplit,
	"dashboard":       types.LayoutGrid,
	"timeline":        types.LayoutTimeline,
	"steps":           types.LayoutFlowchart,
	"photo-visual":    types.LayoutBackground,
	"number-emphasis": types.LayoutCenter,
	"table":           types.LayoutTable,
	"card-tile":       types.LayoutCard,
	"faq":             types.LayoutAccordion,
}

// LayoutFor returns the layout family for a pattern, or one chosen by the
// text's complexity tier when the slide has no pattern.
func (s *Segmenter) LayoutFor(patternID string, a Analysis) types.LayoutPattern {
	if lp, ok := patternLayouts[patternID]; ok {
		return lp
	}
	if patternID != "" {
		return types.LayoutStandard
	}
	switch {
	case a.Tier == TierHigh:
		return types.LayoutGrid
	case a.Tier == TierLow && a.Lines <= s.tuning.CenterMaxLines:
		return types.LayoutCenter
	default:
		return types.LayoutStandard
	}
}

func (s *Segmenter) layout(patternID string, a Analysis) types.Layout {
	design := s.cat.Design()
	l := types.Layout{
		Pattern:   s.LayoutFor(patternID, a),
		Columns:   1,
		Rows:      1,
		Gap:       design.Spacing.Gap,
		Padding:   design.Spacing.Padding,
		Alignment: "left",
	}
	switch l.Pattern {
	case types.LayoutSplit:
		l.Columns = 2
		l.Areas = []string{"left", "right"}
	case types.LayoutGrid:
		l.Columns, l.Rows = 2, 2
	case types.LayoutCard:
		l.Columns = 3
	case types.LayoutTimeline, types.LayoutFlowchart:
		l.Columns = 4
	case types.LayoutCenter, types.LayoutBackground:
		l.Alignment = "center"
	}
	return l
}

// style derives the slide style from the design tokens, tightening
// typography for dense text.
func (s *Segmenter) style(patternID string, a Analysis, split bool) types.Style {
	st := s.cat.Design()
	switch {
	case a.Tier == TierHigh:
		st.Typography.FontSize = "20px"
		st.Typography.LineHeight = 1.4
	case a.Lines > s.tuning.TierLineLimit:
		st.Typography.FontSize = "21px"
		st.Typography.LineHeight = 1.5
	}
	if split {
		st.Spacing.Padding = "40px 60px 60px"
	}
	if patternID == "photo-visual" {
		st.Effects.Animation = "fade-in"
	}
	return st
}
