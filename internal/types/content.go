// Package types defines the records shared by every pipeline stage.
package types

import "strings"

// ContentType is the derived category of a block of text.
type ContentType string

const (
	NumericalData           ContentType = "numerical-data"
	StructuralRelationship  ContentType = "structural-relationship"
	TemporalFlow            ContentType = "temporal-flow"
	InformationOrganization ContentType = "information-organization"
	EmotionalExperiential   ContentType = "emotional-experiential"
)

// AllContentTypes returns every content type in detector priority order.
func AllContentTypes() []ContentType {
	return []ContentType{
		NumericalData,
		StructuralRelationship,
		TemporalFlow,
		InformationOrganization,
		EmotionalExperiential,
	}
}

// Valid reports whether c is one of the five known content types.
func (c ContentType) Valid() bool {
	for _, t := range AllContentTypes() {
		if c == t {
			return true
		}
	}
	return false
}

// Label returns a short human-readable name.
func (c ContentType) Label() string {
	switch c {
	case NumericalData:
		return "numerical data"
	case StructuralRelationship:
		return "structural relationship"
	case TemporalFlow:
		return "temporal flow"
	case InformationOrganization:
		return "information organization"
	case EmotionalExperiential:
		return "emotional / experiential"
	}
	return string(c)
}

// Section is one heading-delimited block of a source document.
type Section struct {
	ID               string      `json:"id"`
	Ordinal          int         `json:"ordinal"`
	Level            int         `json:"level"`
	Title            string      `json:"title"`
	Content          string      `json:"content"`
	Type             ContentType `json:"type,omitempty"`
	EstimatedMinutes int         `json:"estimated_minutes"`
}

// Text returns the title and content as one block for heuristics.
func (s Section) Text() string {
	if s.Title == "" {
		return s.Content
	}
	return s.Title + "\n" + s.Content
}

// WithType returns a copy of the section carrying the given content type.
func (s Section) WithType(t ContentType) Section {
	s.Type = t
	return s
}

// DocumentMetadata summarizes a parsed document.
type DocumentMetadata struct {
	WordCount               int `json:"word_count"`
	HeadingCount            int `json:"heading_count"`
	CodeBlockCount          int `json:"code_block_count"`
	ImageCount              int `json:"image_count"`
	LinkCount               int `json:"link_count"`
	ListCount               int `json:"list_count"`
	TableCount              int `json:"table_count"`
	EstimatedReadingMinutes int `json:"estimated_reading_minutes"`
}

// Document is a parsed source document.
type Document struct {
	Path     string           `json:"path"`
	Stage    Stage            `json:"stage"`
	Title    string           `json:"title"`
	Raw      string           `json:"-"`
	Sections []Section        `json:"sections"`
	Metadata DocumentMetadata `json:"metadata"`
}

// FullText joins every section's title and content.
func (d *Document) FullText() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(d.Title)
	for _, s := range d.Sections {
		b.WriteString("\n")
		b.WriteString(s.Text())
	}
	return b.String()
}

// WithSections returns a shallow copy of the document with a new section slice.
func (d *Document) WithSections(sections []Section) *Document {
	cp := *d
	cp.Sections = sections
	return &cp
}

// SectionByID finds a section by its stable identifier.
func (d *Document) SectionByID(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
