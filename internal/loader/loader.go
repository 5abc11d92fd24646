// Package loader finds, reads and validates the five stage documents and
// parses them into types.Document records.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/parser"
	"mdslides/internal/types"
)

// stagePrefix matches "01_idea.md" style names; the digit is the stage.
var stagePrefix = regexp.MustCompile(`^0([1-5])_.+\.(?i:md|markdown)$`)

// File is one stage document as read from disk. Content is nil when the file
// is missing.
type File struct {
	Path    string
	Stage   types.Stage
	Content []byte
	Missing bool
}

// Source reads the stage documents from a directory. It implements
// pipeline.DocumentSource.
type Source struct {
	cfg    config.InputConfig
	parser *parser.Parser
}

// NewSource creates a source over cfg.Dir.
func NewSource(cfg config.InputConfig, p *parser.Parser) *Source {
	return &Source{cfg: cfg, parser: p}
}

// ValidationError is returned by Load when the inputs fail validation.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, issue := range e.Result.Errors {
		msgs = append(msgs, issue.String())
	}
	return "input validation failed: " + strings.Join(msgs, "; ")
}

// Paths resolves the five stage file paths, one per stage. Stages without a
// matching file get an empty path. Duplicate candidates for a stage are
// reported as order issues.
func (s *Source) Paths() ([]string, []Issue, error) {
	paths := make([]string, config.StageCount)

	if len(s.cfg.Files) > 0 {
		var issues []Issue
		for i, f := range s.cfg.Files {
			if i >= config.StageCount {
				break
			}
			p := f
			if !filepath.IsAbs(p) {
				p = filepath.Join(s.cfg.Dir, p)
			}
			paths[i] = p
			if st, ok := stageOf(filepath.Base(p)); ok && st != types.Stage(i+1) {
				issues = append(issues, Issue{
					Code:    string(types.ErrInvalidFileOrder),
					Path:    p,
					Message: fmt.Sprintf("file is named for stage %d but configured as stage %d", int(st), i+1),
				})
			}
		}
		return paths, issues, nil
	}

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var issues []Issue
	for _, name := range names {
		st, ok := stageOf(name)
		if !ok {
			continue
		}
		i := int(st) - 1
		p := filepath.Join(s.cfg.Dir, name)
		if paths[i] != "" {
			issues = append(issues, Issue{
				Code:    string(types.ErrInvalidFileOrder),
				Path:    p,
				Message: fmt.Sprintf("stage %d already provided by %s", int(st), filepath.Base(paths[i])),
			})
			continue
		}
		paths[i] = p
	}
	return paths, issues, nil
}

func stageOf(name string) (types.Stage, bool) {
	m := stagePrefix.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return types.Stage(n), true
}

// Read reads every stage file concurrently. Missing files are returned with
// Missing set; other read errors fail the whole call.
func (s *Source) Read(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)

	for i, p := range paths {
		i, p := i, p // per-iteration copies for the goroutine below (go < 1.22)
		stage := types.Stage(i + 1)
		if p == "" {
			files[i] = &File{Stage: stage, Missing: true}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if errors.Is(err, os.ErrNotExist) {
				files[i] = &File{Path: p, Stage: stage, Missing: true}
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", p, err)
			}
			files[i] = &File{Path: p, Stage: stage, Content: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Check reads and validates the inputs without parsing them.
func (s *Source) Check(ctx context.Context) (ValidationResult, []*File, error) {
	paths, orderIssues, err := s.Paths()
	if err != nil {
		return ValidationResult{}, nil, err
	}
	files, err := s.Read(ctx, paths)
	if err != nil {
		return ValidationResult{}, nil, err
	}

	res := Validate(files, s.cfg.Strict)
	res.Errors = append(orderIssues, res.Errors...)
	res.Valid = len(res.Errors) == 0
	return res, files, nil
}

// Load reads, validates and parses the stage documents. Missing files are
// returned as nil documents so the pipeline fails at their stage; every
// other validation error fails Load with a *ValidationError.
func (s *Source) Load(ctx context.Context) ([]*types.Document, error) {
	timer := logging.StartTimer(logging.CategoryLoader, "load")
	defer timer.Stop()

	res, files, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		logging.LoaderWarn("%s", w)
	}

	var blocking []Issue
	for _, e := range res.Errors {
		if e.Code != string(types.ErrFileNotFound) {
			blocking = append(blocking, e)
		}
	}
	if len(blocking) > 0 {
		res.Errors = blocking
		return nil, &ValidationError{Result: res}
	}

	docs := make([]*types.Document, len(files))
	for i, f := range files {
		if f.Missing {
			logging.LoaderWarn("stage %d input is missing", int(f.Stage))
			continue
		}
		doc, err := s.parser.Parse(f.Path, f.Stage, f.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
		}
		docs[i] = doc
	}

	logging.Loader("loaded %d stage documents from %s", len(docs), s.cfg.Dir)
	return docs, nil
}
