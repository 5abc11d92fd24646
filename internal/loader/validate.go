package loader

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mdslides/internal/config"
	"mdslides/internal/types"
)

// MinContentLength is the size below which a document is reported as short.
const MinContentLength = 100

// Issue is one validation finding. Code is a types.ErrorCode for errors and
// a types.WarningCode for warnings.
type Issue struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Validate checks the stage files: exactly five, in stage order, each
// readable, non-empty, valid UTF-8 with balanced code fences. Short files are
// warnings unless strict is set.
func Validate(files []*File, strict bool) ValidationResult {
	var res ValidationResult
	addErr := func(code types.ErrorCode, path, format string, args ...interface{}) {
		res.Errors = append(res.Errors, Issue{Code: string(code), Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if len(files) != config.StageCount {
		addErr(types.ErrInvalidFileOrder, "", "expected %d files, found %d", config.StageCount, len(files))
	}

	for i, f := range files {
		if f == nil {
			addErr(types.ErrFileNotFound, "", "stage %d input is missing", i+1)
			continue
		}
		if f.Stage != types.Stage(i+1) {
			addErr(types.ErrInvalidFileOrder, f.Path, "expected stage %d, got stage %d", i+1, int(f.Stage))
		}
		if f.Missing {
			addErr(types.ErrFileNotFound, f.Path, "stage %d input is missing", int(f.Stage))
			continue
		}

		content := string(f.Content)
		switch {
		case strings.TrimSpace(content) == "":
			addErr(types.ErrCorruptedContent, f.Path, "file is empty")
			continue
		case !utf8.ValidString(content):
			addErr(types.ErrEncoding, f.Path, "file is not valid UTF-8")
			continue
		}

		if line, ok := unbalancedFence(content); ok {
			addErr(types.ErrInvalidMarkdown, f.Path, "code fence opened on line %d is never closed", line)
		}

		if n := len(content); n < MinContentLength {
			issue := Issue{
				Code:    string(types.WarnShortContent),
				Path:    f.Path,
				Message: fmt.Sprintf("very short content (%d characters)", n),
			}
			if strict {
				res.Errors = append(res.Errors, issue)
			} else {
				res.Warnings = append(res.Warnings, issue)
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// unbalancedFence returns the 1-based line of a fence that is never closed.
func unbalancedFence(content string) (int, bool) {
	open, openLine := "", 0
	for n, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if open == "" {
			if f := fenceMarker(trimmed); f != "" {
				open, openLine = f, n+1
			}
			continue
		}
		if strings.HasPrefix(trimmed, open) && strings.Trim(trimmed, open[:1]) == "" {
			open = ""
		}
	}
	return openLine, open != ""
}

func fenceMarker(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		if strings.HasPrefix(trimmed, strings.Repeat(ch, 3)) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, ch))
			return strings.Repeat(ch, n)
		}
	}
	return ""
}
