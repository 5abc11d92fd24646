// Package parser turns a markdown source document into a types.Document:
// heading-delimited sections plus document metadata.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/types"
)

// ErrInvalidEncoding is returned for sources that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

var setextUnderline = regexp.MustCompile(`^\s{0,3}(=+|-+)\s*$`)

// Parser parses markdown documents. It is safe for concurrent use.
type Parser struct {
	md     goldmark.Markdown
	tuning config.ParserTuning
}

// New creates a parser with GitHub-flavoured extensions enabled.
func New(tuning config.ParserTuning) *Parser {
	if tuning.MaxSectionLevel <= 0 {
		tuning.MaxSectionLevel = 6
	}
	if tuning.ReadingWordsPerMinute <= 0 {
		tuning.ReadingWordsPerMinute = 200
	}
	if tuning.CJKCharsPerWord <= 0 {
		tuning.CJKCharsPerWord = 2.5
	}
	return &Parser{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		tuning: tuning,
	}
}

// boundary marks one section-starting heading in the source.
type boundary struct {
	level     int
	title     string
	start     int // offset of the heading line
	bodyStart int // offset just past the heading
}

// Parse converts source into a Document for the given stage.
func (p *Parser) Parse(path string, stage types.Stage, source []byte) (*types.Document, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}
	source = bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))

	root := p.md.Parser().Parse(text.NewReader(source))

	bounds := p.boundaries(root, source)
	sections := p.sections(bounds, source)
	meta := p.metadata(root, string(source))

	doc := &types.Document{
		Path:     path,
		Stage:    stage,
		Title:    documentTitle(bounds, path),
		Raw:      string(source),
		Sections: sections,
		Metadata: meta,
	}

	logging.ParserDebug("parsed %s: %d sections, %d words", path, len(sections), meta.WordCount)
	return doc, nil
}

// boundaries collects top-level headings at or above MaxSectionLevel.
func (p *Parser) boundaries(root ast.Node, source []byte) []boundary {
	var out []boundary
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > p.tuning.MaxSectionLevel {
			continue
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			continue
		}
		first := lines.At(0)
		last := lines.At(lines.Len() - 1)

		start := bytes.LastIndexByte(source[:first.Start], '\n') + 1
		end := lineEnd(source, last.Stop)

		// setext headings carry their underline on the following line
		if end < len(source) {
			next := lineEnd(source, end)
			if setextUnderline.Match(bytes.TrimRight(source[end:next], "\n")) {
				end = next
			}
		}

		var title bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if i > 0 {
				title.WriteByte(' ')
			}
			title.Write(bytes.TrimSpace(seg.Value(source)))
		}

		out = append(out, boundary{
			level:     h.Level,
			title:     strings.TrimSpace(title.String()),
			start:     start,
			bodyStart: end,
		})
	}
	return out
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(source []byte, pos int) int {
	if pos >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(source)
}

func (p *Parser) sections(bounds []boundary, source []byte) []types.Section {
	var out []types.Section
	add := func(level int, title, content string) {
		ordinal := len(out) + 1
		words := CountWords(title+"\n"+content, p.tuning.CJKCharsPerWord)
		out = append(out, types.Section{
			ID:               fmt.Sprintf("section-%d", ordinal),
			Ordinal:          ordinal,
			Level:            level,
			Title:            title,
			Content:          content,
			EstimatedMinutes: ceilDiv(words, p.tuning.ReadingWordsPerMinute),
		})
	}

	preambleEnd := len(source)
	if len(bounds) > 0 {
		preambleEnd = bounds[0].start
	}
	if pre := trimBlankLines(string(source[:preambleEnd])); pre != "" {
		add(0, "", pre)
	}

	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = bounds[i+1].start
		}
		add(b.level, b.title, trimBlankLines(string(source[b.bodyStart:end])))
	}
	return out
}

func (p *Parser) metadata(root ast.Node, raw string) types.DocumentMetadata {
	var meta types.DocumentMetadata
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			meta.HeadingCount++
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			meta.CodeBlockCount++
		case ast.KindImage:
			meta.ImageCount++
		case ast.KindLink, ast.KindAutoLink:
			meta.LinkCount++
		case ast.KindList:
			meta.ListCount++
		case east.KindTable:
			meta.TableCount++
		}
		return ast.WalkContinue, nil
	})
	meta.WordCount = CountWords(raw, p.tuning.CJKCharsPerWord)
	meta.EstimatedReadingMinutes = ceilDiv(meta.WordCount, p.tuning.ReadingWordsPerMinute)
	return meta
}

func documentTitle(bounds []boundary, path string) string {
	for _, b := range bounds {
		if b.level == 1 && b.title != "" {
			return b.title
		}
	}
	for _, b := range bounds {
		if b.title != "" {
			return b.title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// trimBlankLines drops leading and trailing blank lines but keeps the
// indentation of the first non-blank line.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	for i := start; i < end; i++ {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines[start:end], "\n")
}

func ceilDiv(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
