package render

import (
	"fmt"
	"strings"

	"mdslides/internal/types"
)

// layoutCSS styles the layout families; slides carry a layout-<pattern> class.
const layoutCSS = `.layout-split .slide-content { display: grid; grid-template-columns: 1fr 1fr; gap: var(--gap); }
.layout-grid .slide-content, .layout-dashboard .slide-content { display: grid; grid-template-columns: repeat(auto-fit, minmax(250px, 1fr)); gap: var(--gap); }
.layout-center .slide-content, .layout-background .slide-content { text-align: center; }
.layout-card ul { display: grid; grid-template-columns: repeat(3, 1fr); gap: var(--gap); list-style: none; padding: 0; }
.layout-card li { padding: 1rem; border: var(--border); border-radius: var(--radius); box-shadow: var(--shadow); }
.layout-timeline ul, .layout-timeline ol { border-left: 2px solid var(--primary); padding-left: 2rem; }
.layout-flowchart ol { counter-reset: step; list-style: none; padding: 0; }
.layout-flowchart ol > li { margin: 1rem 0; padding: 1rem; border-left: 4px solid var(--primary); }
.layout-table table { width: 100%; border-collapse: collapse; }
.layout-table td, .layout-table th { border: var(--border); padding: .4rem .8rem; }
.kind-title { text-align: center; }
.overview { color: var(--secondary); font-weight: 600; }`

// rootCSS renders the design tokens as CSS custom properties plus the base
// section rule.
func rootCSS(d types.Style) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	vars := [][2]string{
		{"primary", d.Colors.Primary},
		{"secondary", d.Colors.Secondary},
		{"background", d.Colors.Background},
		{"text", d.Colors.Text},
		{"accent", d.Colors.Accent},
		{"gap", d.Spacing.Gap},
		{"border", d.Effects.Border},
		{"radius", d.Effects.BorderRadius},
		{"shadow", d.Effects.Shadow},
	}
	for _, v := range vars {
		if v[1] != "" {
			fmt.Fprintf(&b, "  --%s: %s;\n", v[0], v[1])
		}
	}
	b.WriteString("}\n")
	fmt.Fprintf(&b, "section { font-family: %s; font-size: %s; line-height: %g; color: var(--text); background: var(--background); padding: %s; }\n",
		d.Typography.FontFamily, d.Typography.FontSize, d.Typography.LineHeight, d.Spacing.Padding)
	b.WriteString("h1, h2, h3 { color: var(--primary); }\n")
	return b.String()
}

// slideStyle renders the per-slide overrides that differ from the deck design.
func slideStyle(s, base types.Style) string {
	var parts []string
	if s.Typography.FontSize != "" && s.Typography.FontSize != base.Typography.FontSize {
		parts = append(parts, "font-size: "+s.Typography.FontSize)
	}
	if s.Typography.LineHeight != 0 && s.Typography.LineHeight != base.Typography.LineHeight {
		parts = append(parts, fmt.Sprintf("line-height: %g", s.Typography.LineHeight))
	}
	if s.Typography.FontWeight != 0 && s.Typography.FontWeight != base.Typography.FontWeight {
		parts = append(parts, fmt.Sprintf("font-weight: %d", s.Typography.FontWeight))
	}
	if s.Spacing.Padding != "" && s.Spacing.Padding != base.Spacing.Padding {
		parts = append(parts, "padding: "+s.Spacing.Padding)
	}
	return strings.Join(parts, "; ")
}
