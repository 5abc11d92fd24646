package render

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"mdslides/internal/logging"
	"mdslides/internal/types"
)

//go:embed deck.html.tmpl
var deckTemplate string

// ErrEmptyDeck is returned when a deck has no slides to emit.
var ErrEmptyDeck = errors.New("deck has no slides")

// HTMLEmitter renders decks to Marp markdown and a standalone HTML
// slideshow. It is safe for concurrent use.
type HTMLEmitter struct {
	opts   Options
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template
}

// NewHTMLEmitter creates an emitter.
func NewHTMLEmitter(opts Options) *HTMLEmitter {
	if opts.Lang == "" {
		opts.Lang = "en"
	}

	// Raw HTML from the markdown is kept here and sanitized afterwards.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-z][a-z0-9 -]*$`)).OnElements("p", "div", "span", "table")

	return &HTMLEmitter{
		opts:   opts,
		md:     md,
		policy: policy,
		tmpl:   template.Must(template.New("deck").Parse(deckTemplate)),
	}
}

type slideView struct {
	ID     string
	Index  int
	Number int
	Title  string
	Kind   types.SlideKind
	Layout types.LayoutPattern
	Style  template.CSS
	Body   template.HTML
}

type deckView struct {
	Lang   string
	Title  string
	CSS    template.CSS
	Count  int
	Slides []slideView
}

// Emit implements the pipeline emitter.
func (e *HTMLEmitter) Emit(ctx context.Context, deck *types.SlideDeck) (*types.EmittedDeck, error) {
	if deck == nil || len(deck.Slides) == 0 {
		return nil, ErrEmptyDeck
	}
	timer := logging.StartTimer(logging.CategoryRender, "emit")
	defer timer.Stop()

	markdown, err := Marp(deck, e.opts)
	if err != nil {
		return nil, err
	}

	view := deckView{
		Lang:  e.opts.Lang,
		Title: deck.Title,
		CSS:   template.CSS(rootCSS(e.opts.Design) + layoutCSS),
		Count: len(deck.Slides),
	}
	out := &types.EmittedDeck{Markdown: markdown}

	for i, s := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := e.SlideHTML(s, deck)
		if err != nil {
			return nil, fmt.Errorf("slide %s: %w", s.ID, err)
		}
		out.SlideHTML = append(out.SlideHTML, body)
		view.Slides = append(view.Slides, slideView{
			ID:     s.ID,
			Index:  i,
			Number: i + 1,
			Title:  s.Title,
			Kind:   s.Kind,
			Layout: s.Layout.Pattern,
			Style:  template.CSS(slideStyle(s.Style, e.opts.Design)),
			Body:   template.HTML(body),
		})
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render deck: %w", err)
	}
	out.HTML = buf.String()
	out.SlideCount = len(out.SlideHTML)

	logging.Render("emitted %d slides (%d bytes html, %d bytes markdown)", out.SlideCount, len(out.HTML), len(out.Markdown))
	return out, nil
}

// SlideHTML converts one slide's markdown body to sanitized HTML.
func (e *HTMLEmitter) SlideHTML(s types.SlideDefinition, deck *types.SlideDeck) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(slideMarkdown(s, deck)), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return e.policy.Sanitize(buf.String()), nil
}
