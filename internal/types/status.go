package types

import (
	"fmt"
	"time"
)

// Stage identifies one of the five pipeline stages.
type Stage int

const (
	StageIdeaAnalysis Stage = iota + 1
	StageDraftStructure
	StagePatternSelection
	StageSlideGeneration
	StageEmission
)

// AllStages returns the stages in execution order.
func AllStages() []Stage {
	return []Stage{StageIdeaAnalysis, StageDraftStructure, StagePatternSelection, StageSlideGeneration, StageEmission}
}

func (s Stage) String() string {
	switch s {
	case StageIdeaAnalysis:
		return "idea-analysis"
	case StageDraftStructure:
		return "draft-structure"
	case StagePatternSelection:
		return "pattern-selection"
	case StageSlideGeneration:
		return "slide-generation"
	case StageEmission:
		return "emission"
	}
	return fmt.Sprintf("stage-%d", int(s))
}

// ErrorCode classifies a processing error.
type ErrorCode string

const (
	ErrFileNotFound            ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidFileOrder        ErrorCode = "INVALID_FILE_ORDER"
	ErrCorruptedContent        ErrorCode = "CORRUPTED_CONTENT"
	ErrEncoding                ErrorCode = "ENCODING_ERROR"
	ErrInvalidMarkdown         ErrorCode = "INVALID_MARKDOWN"
	ErrMissingRequiredElements ErrorCode = "MISSING_REQUIRED_ELEMENTS"
	ErrContentTooLong          ErrorCode = "CONTENT_TOO_LONG"
	ErrPatternSelectionFailed  ErrorCode = "PATTERN_SELECTION_FAILED"
	ErrSegmentationFailed      ErrorCode = "SEGMENTATION_FAILED"
	ErrEmissionFailed          ErrorCode = "EMISSION_FAILED"
	ErrValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCancelled               ErrorCode = "CANCELLED"
)

// WarningCode classifies a processing warning.
type WarningCode string

const (
	WarnShortContent          WarningCode = "SHORT_CONTENT"
	WarnMissingPrinciples     WarningCode = "MISSING_PRINCIPLES"
	WarnIncompleteFramework   WarningCode = "INCOMPLETE_FRAMEWORK"
	WarnClassificationDefault WarningCode = "CLASSIFICATION_DEFAULTED"
	WarnDraftIssue            WarningCode = "MISSING_REQUIRED_ELEMENTS"
	WarnDraftRecommendation   WarningCode = "DRAFT_RECOMMENDATION"
	WarnLowCompleteness       WarningCode = "LOW_COMPLETENESS"
	WarnUnmappedSections      WarningCode = "UNMAPPED_SECTIONS"
	WarnLowConfidence         WarningCode = "LOW_CONFIDENCE_PATTERNS"
	WarnPatternOveruse        WarningCode = "PATTERN_OVERUSE"
	WarnOptimizerNotConverged WarningCode = "OPTIMIZER_NOT_CONVERGED"
	WarnLongSlides            WarningCode = "LONG_SLIDES"
	WarnMissingOverview       WarningCode = "MISSING_OVERVIEW"
	WarnLargeSlideHTML        WarningCode = "PERFORMANCE_WARNING"
)

// ProcessingError is a stage-blocking problem.
type ProcessingError struct {
	Stage       Stage             `json:"stage"`
	Code        ErrorCode         `json:"code"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	Recoverable bool              `json:"recoverable"`
	Time        time.Time         `json:"time"`
}

// ProcessingWarning is a non-blocking problem.
type ProcessingWarning struct {
	Stage   Stage             `json:"stage"`
	Code    WarningCode       `json:"code"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// StageState is the outcome of one stage in a run.
type StageState string

const (
	StagePending   StageState = "pending"
	StageRunning   StageState = "running"
	StageCompleted StageState = "completed"
	StageFailed    StageState = "failed"
	StageSkipped   StageState = "skipped"
)

// Status is a point-in-time snapshot of an orchestrator run.
type Status struct {
	RunID                     string              `json:"run_id"`
	CurrentStage              Stage               `json:"current_stage"`
	Progress                  int                 `json:"progress"`
	Running                   bool                `json:"running"`
	Done                      bool                `json:"done"`
	Failed                    bool                `json:"failed"`
	Errors                    []ProcessingError   `json:"errors"`
	Warnings                  []ProcessingWarning `json:"warnings"`
	EstimatedSecondsRemaining int                 `json:"estimated_seconds_remaining"`
	StartedAt                 time.Time           `json:"started_at"`
}
