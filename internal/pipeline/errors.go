package pipeline

import (
	"errors"
	"fmt"

	"mdslides/internal/types"
)

var (
	ErrMissingInput   = errors.New("required stage input is missing")
	ErrNoSections     = errors.New("document has no sections")
	ErrNoMappings     = errors.New("no pattern mappings were produced")
	ErrNoSlides       = errors.New("no slides were produced")
	ErrEmissionFailed = errors.New("slide emission failed")
	ErrRunInProgress  = errors.New("a run is already in progress")
	ErrNoRun          = errors.New("no run has been started")
)

// StageError is returned when a stage cannot produce the output the next
// stage needs. The run aborts at Stage.
type StageError struct {
	Stage types.Stage
	Code  types.ErrorCode
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed [%s]: %v", int(e.Stage), e.Stage, e.Code, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage types.Stage, code types.ErrorCode, err error) *StageError {
	return &StageError{Stage: stage, Code: code, Err: err}
}
