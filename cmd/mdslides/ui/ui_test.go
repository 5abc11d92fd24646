package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/types"
)

func staticStatus(s types.Status) StatusFunc {
	return func() types.Status { return s }
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPollUpdatesStatus(t *testing.T) {
	st := types.Status{
		CurrentStage:              types.StagePatternSelection,
		Progress:                  30,
		Running:                   true,
		EstimatedSecondsRemaining: 105,
		Warnings: []types.ProcessingWarning{
			{Stage: types.StagePatternSelection, Code: types.WarnLowConfidence, Message: "2 sections classified with low confidence"},
		},
	}
	m := NewProgressModel("deck", staticStatus(st), 10*time.Millisecond, nil)

	next, cmd := m.Update(pollMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.False(t, isQuit(t, cmd))

	pm := next.(ProgressModel)
	assert.Equal(t, 30, pm.Status().Progress)

	view := pm.View()
	assert.Contains(t, view, "Stage 3/5")
	assert.Contains(t, view, "pattern-selection")
	assert.Contains(t, view, "~105s remaining")
	assert.Contains(t, view, "Warnings (1)")
	assert.Contains(t, view, string(types.WarnLowConfidence))
}

func TestRunFinishedQuits(t *testing.T) {
	st := types.Status{CurrentStage: types.StageEmission, Progress: 100, Done: true}
	m := NewProgressModel("deck", staticStatus(st), 0, nil)

	next, cmd := m.Update(RunFinishedMsg{})
	assert.True(t, isQuit(t, cmd))
	view := next.View()
	assert.Contains(t, view, "done")
	assert.NotContains(t, view, "q: cancel")
}

func TestFailedRunShowsErrors(t *testing.T) {
	st := types.Status{
		CurrentStage: types.StageDraftStructure,
		Progress:     15,
		Failed:       true,
		Errors: []types.ProcessingError{
			{Stage: types.StageDraftStructure, Code: types.ErrMissingRequiredElements, Message: "draft has no sections"},
		},
	}
	m := NewProgressModel("deck", staticStatus(st), 0, nil)

	next, _ := m.Update(RunFinishedMsg{Err: errors.New("stage failed")})
	view := next.View()
	assert.Contains(t, view, "draft has no sections")
	assert.NotContains(t, view, "stage failed")
}

func TestWarningListIsBounded(t *testing.T) {
	var st types.Status
	for i := 0; i < maxWarningLines+3; i++ {
		st.Warnings = append(st.Warnings, types.ProcessingWarning{Code: types.WarnLongSlides, Message: "w" + strings.Repeat("x", i)})
	}
	m := NewProgressModel("deck", staticStatus(st), 0, nil)
	next, _ := m.Update(pollMsg(time.Now()))

	view := next.View()
	assert.Equal(t, maxWarningLines, strings.Count(view, string(types.WarnLongSlides)))
	assert.Contains(t, view, "Warnings (8)")
}

func TestCancelKey(t *testing.T) {
	cancelled := false
	m := NewProgressModel("deck", nil, 0, func() { cancelled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(t, cmd))
	assert.True(t, cancelled)
	assert.True(t, next.(ProgressModel).Aborted())
}

func TestTable(t *testing.T) {
	table := NewTable("Patterns", "ID", "Name")
	assert.Empty(t, table.View(DefaultStyles()))

	table.AddRow("bullet-list", "Bullet list")
	table.AddRow("quote")

	view := table.View(DefaultStyles())
	assert.Contains(t, view, "Patterns")
	assert.Contains(t, view, "bullet-list")
	assert.Contains(t, view, "quote")
	assert.Equal(t, 5, strings.Count(view, "\n"))
}

func TestStageState(t *testing.T) {
	failed := types.Status{CurrentStage: types.StagePatternSelection, Failed: true}
	running := types.Status{CurrentStage: types.StagePatternSelection, Running: true}

	tests := []struct {
		name   string
		status types.Status
		stage  types.Stage
		want   types.StageState
	}{
		{"before failure", failed, types.StageDraftStructure, types.StageCompleted},
		{"at failure", failed, types.StagePatternSelection, types.StageFailed},
		{"after failure", failed, types.StageEmission, types.StageSkipped},
		{"current", running, types.StagePatternSelection, types.StageRunning},
		{"upcoming", running, types.StageSlideGeneration, types.StagePending},
		{"done", types.Status{CurrentStage: types.StageEmission, Done: true}, types.StageEmission, types.StageCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stageState(tt.status, tt.stage))
		})
	}
}

func TestStylesRenderText(t *testing.T) {
	s := NewStyles(lightTheme)
	assert.Contains(t, s.Score(90), "90/100")
	assert.Contains(t, s.StageLine(types.StageEmission, types.StageFailed), "emission")
	assert.Contains(t, s.StageLine(types.StageEmission, types.StageFailed), "✗")
}
