// Package render emits a slide deck as Marp markdown and as a standalone,
// sanitized HTML slideshow.
package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"mdslides/internal/config"
	"mdslides/internal/types"
)

// Options control emission.
type Options struct {
	Theme        string
	Paginate     bool
	IncludeNotes bool
	Lang         string
	// Design is the deck-wide style; per-slide styles are rendered as
	// overrides against it.
	Design types.Style
}

// OptionsFromConfig builds emission options from the output configuration.
func OptionsFromConfig(out config.OutputConfig, design types.Style) Options {
	return Options{
		Theme:        out.Theme,
		Paginate:     out.Paginate,
		IncludeNotes: out.IncludeNotes,
		Lang:         "ja",
		Design:       design,
	}
}

type frontMatter struct {
	Marp            bool   `yaml:"marp"`
	Title           string `yaml:"title,omitempty"`
	Theme           string `yaml:"theme,omitempty"`
	Paginate        bool   `yaml:"paginate"`
	BackgroundColor string `yaml:"backgroundColor,omitempty"`
	Color           string `yaml:"color,omitempty"`
}

// Marp renders the deck as a Marp markdown document.
func Marp(deck *types.SlideDeck, opts Options) (string, error) {
	fm, err := yaml.Marshal(frontMatter{
		Marp:            true,
		Title:           deck.Title,
		Theme:           opts.Theme,
		Paginate:        opts.Paginate,
		BackgroundColor: opts.Design.Colors.Background,
		Color:           opts.Design.Colors.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n<style>\n")
	b.WriteString(rootCSS(opts.Design))
	b.WriteString(layoutCSS)
	b.WriteString("\n</style>\n\n")

	for i, s := range deck.Slides {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "<!-- _class: layout-%s kind-%s -->\n", s.Layout.Pattern, s.Kind)
		if style := slideStyle(s.Style, opts.Design); style != "" {
			fmt.Fprintf(&b, "<!-- _style: \"%s\" -->\n", style)
		}
		b.WriteString("\n")
		b.WriteString(slideMarkdown(s, deck))
		if opts.IncludeNotes && s.Notes != "" {
			fmt.Fprintf(&b, "\n<!--\n%s\n-->\n", strings.ReplaceAll(s.Notes, "-->", "--&gt;"))
		}
	}
	return b.String(), nil
}

// slideMarkdown is the visible body of one slide, without Marp directives.
func slideMarkdown(s types.SlideDefinition, deck *types.SlideDeck) string {
	var b strings.Builder
	if s.Kind == types.SlideTitle {
		fmt.Fprintf(&b, "# %s\n\n", s.Title)
		fmt.Fprintf(&b, "**%d slides | about %d minutes**\n\n", len(deck.Slides), deck.EstimatedMinutes)
		for _, c := range s.Sections {
			if strings.TrimSpace(c.Content) != "" {
				b.WriteString(c.Content)
				b.WriteString("\n")
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", s.Title)
	if s.OverviewStatement != "" {
		fmt.Fprintf(&b, "<p class=\"overview\">%s</p>\n\n", escapeText(s.OverviewStatement))
	}
	for _, c := range s.Sections {
		if len(s.Sections) > 1 && c.Title != "" {
			fmt.Fprintf(&b, "### %s\n\n", c.Title)
		}
		b.WriteString(strings.TrimRight(c.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
