package types

// SlideKind distinguishes how a slide was produced.
type SlideKind string

const (
	SlideTitle    SlideKind = "title"
	SlideSingle   SlideKind = "single"
	SlideOverview SlideKind = "overview"
	SlideDetail   SlideKind = "detail"
)

// LayoutPattern names the layout family of a slide.
type LayoutPattern string

const (
	LayoutStandard   LayoutPattern = "standard"
	LayoutSplit      LayoutPattern = "split"
	LayoutCenter     LayoutPattern = "center"
	LayoutBackground LayoutPattern = "background"
	LayoutGrid       LayoutPattern = "grid"
	LayoutTable      LayoutPattern = "table"
	LayoutFlowchart  LayoutPattern = "flowchart"
	LayoutAccordion  LayoutPattern = "accordion"
	LayoutTimeline   LayoutPattern = "timeline"
	LayoutCard       LayoutPattern = "card"
	LayoutDashboard  LayoutPattern = "dashboard"
)

// Layout describes slide geometry.
type Layout struct {
	Pattern   LayoutPattern `json:"pattern"`
	Columns   int           `json:"columns"`
	Rows      int           `json:"rows"`
	Areas     []string      `json:"areas,omitempty"`
	Gap       string        `json:"gap"`
	Padding   string        `json:"padding"`
	Alignment string        `json:"alignment"`
}

// ColorScheme is the slide palette.
type ColorScheme struct {
	Primary    string `yaml:"primary" json:"primary"`
	Secondary  string `yaml:"secondary" json:"secondary"`
	Background string `yaml:"background" json:"background"`
	Text       string `yaml:"text" json:"text"`
	Accent     string `yaml:"accent" json:"accent"`
}

// Typography is the slide font setup.
type Typography struct {
	FontFamily string  `yaml:"font_family" json:"font_family"`
	FontSize   string  `yaml:"font_size" json:"font_size"`
	FontWeight int     `yaml:"font_weight" json:"font_weight"`
	LineHeight float64 `yaml:"line_height" json:"line_height"`
}

// Spacing holds padding, margin and gap values.
type Spacing struct {
	Padding string `yaml:"padding" json:"padding"`
	Margin  string `yaml:"margin" json:"margin"`
	Gap     string `yaml:"gap" json:"gap"`
}

// Effects holds decoration hints.
type Effects struct {
	Shadow       string `yaml:"shadow" json:"shadow"`
	Border       string `yaml:"border" json:"border"`
	BorderRadius string `yaml:"border_radius" json:"border_radius"`
	Animation    string `yaml:"animation,omitempty" json:"animation,omitempty"`
}

// Style is the full visual record of one slide.
type Style struct {
	Colors     ColorScheme `yaml:"colors" json:"colors"`
	Typography Typography  `yaml:"typography" json:"typography"`
	Spacing    Spacing     `yaml:"spacing" json:"spacing"`
	Effects    Effects     `yaml:"effects" json:"effects"`
}

// SlideContent is one content block placed on a slide. Content is the
// rendered text; Body is the source text it was cut from, without generated
// headers.
type SlideContent struct {
	Title            string      `json:"title"`
	Level            int         `json:"level"`
	Content          string      `json:"content"`
	Body             string      `json:"body"`
	Type             ContentType `json:"type"`
	EstimatedMinutes int         `json:"estimated_minutes"`
}

// SlideDefinition is the output unit of segmentation.
type SlideDefinition struct {
	ID                string         `json:"id"`
	Order             int            `json:"order"`
	Kind              SlideKind      `json:"kind"`
	Title             string         `json:"title"`
	OverviewStatement string         `json:"overview_statement"`
	SectionID         string         `json:"section_id,omitempty"`
	PatternID         string         `json:"pattern_id,omitempty"`
	Sections          []SlideContent `json:"sections"`
	Layout            Layout         `json:"layout"`
	Style             Style          `json:"style"`
	Notes             string         `json:"notes,omitempty"`
}

// EstimatedMinutes sums the content blocks of the slide.
func (s SlideDefinition) EstimatedMinutes() int {
	total := 0
	for _, c := range s.Sections {
		total += c.EstimatedMinutes
	}
	return total
}

// SlideDeck is the complete, ordered output of segmentation.
type SlideDeck struct {
	Title            string            `json:"title"`
	Slides           []SlideDefinition `json:"slides"`
	Mappings         []PatternMapping  `json:"mappings"`
	EstimatedMinutes int               `json:"estimated_minutes"`
}

// Renumber returns a copy of slides with contiguous orders starting at 1.
func Renumber(slides []SlideDefinition) []SlideDefinition {
	out := make([]SlideDefinition, len(slides))
	for i, s := range slides {
		s.Order = i + 1
		out[i] = s
	}
	return out
}

// EmittedDeck is what an emitter produces from a deck.
type EmittedDeck struct {
	Markdown   string   `json:"-"`
	HTML       string   `json:"-"`
	SlideCount int      `json:"slide_count"`
	SlideHTML  []string `json:"-"`
}
