package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mdslides/internal/config"
	"mdslides/internal/types"
)

// StatusFunc returns the current pipeline status snapshot.
type StatusFunc func() types.Status

// RunFinishedMsg tells the model the pipeline run returned.
type RunFinishedMsg struct {
	Err error
}

type pollMsg time.Time

// maxWarningLines bounds the warning list in the view.
const maxWarningLines = 5

// ProgressModel shows a running pipeline: current stage, progress bar,
// ETA and the latest warnings. It polls StatusFunc on an interval.
type ProgressModel struct {
	poll     StatusFunc
	interval time.Duration
	onCancel func()

	status   types.Status
	finished bool
	runErr   error
	aborted  bool

	width    int
	bar      progress.Model
	spinner  spinner.Model
	styles   Styles
	title    string
	lastPoll time.Time
}

// NewProgressModel creates a model that polls poll every interval. onCancel
// is called when the user aborts with q or ctrl+c.
func NewProgressModel(title string, poll StatusFunc, interval time.Duration, onCancel func()) ProgressModel {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return ProgressModel{
		poll:     poll,
		interval: interval,
		onCancel: onCancel,
		width:    80,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		spinner:  sp,
		styles:   DefaultStyles(),
		title:    title,
	}
}

func (m ProgressModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

// Init starts polling.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-4, 80)
		return m, nil

	case pollMsg:
		m.refresh(time.Time(msg))
		if m.finished {
			return m, tea.Quit
		}
		return m, m.tick()

	case RunFinishedMsg:
		m.finished = true
		m.runErr = msg.Err
		m.refresh(time.Now())
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		if bar, ok := pm.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) refresh(now time.Time) {
	if m.poll != nil {
		m.status = m.poll()
	}
	m.lastPoll = now
}

// Status returns the last polled status.
func (m ProgressModel) Status() types.Status {
	return m.status
}

// Aborted reports whether the user cancelled the run.
func (m ProgressModel) Aborted() bool {
	return m.aborted
}

// stageState derives a stage's state from a status snapshot.
func stageState(s types.Status, stage types.Stage) types.StageState {
	switch {
	case s.Done || stage < s.CurrentStage:
		return types.StageCompleted
	case stage > s.CurrentStage:
		if s.Failed {
			return types.StageSkipped
		}
		return types.StagePending
	case s.Failed:
		return types.StageFailed
	case s.Running:
		return types.StageRunning
	default:
		return types.StagePending
	}
}

// View renders the model.
func (m ProgressModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" "+m.title+" ") + "\n\n")

	s := m.status
	stageLine := "waiting to start"
	if s.CurrentStage > 0 {
		stageLine = fmt.Sprintf("Stage %d/%d  %s", int(s.CurrentStage), config.StageCount, s.CurrentStage)
	}
	switch {
	case s.Failed:
		sb.WriteString(m.styles.Error.Render("✗ "+stageLine) + "\n")
	case s.Done:
		sb.WriteString(m.styles.Success.Render("✓ done") + "\n")
	default:
		sb.WriteString(m.spinner.View() + " " + m.styles.Bold.Render(stageLine) + "\n")
	}

	sb.WriteString(m.bar.ViewAs(float64(s.Progress)/100) + "\n")
	for _, stage := range types.AllStages() {
		sb.WriteString("  " + m.styles.StageLine(stage, stageState(s, stage)) + "\n")
	}

	meta := fmt.Sprintf("%d%%", s.Progress)
	if s.Running && s.EstimatedSecondsRemaining > 0 {
		meta += fmt.Sprintf("  ·  ~%ds remaining", s.EstimatedSecondsRemaining)
	}
	sb.WriteString(m.styles.Muted.Render(meta) + "\n")

	if len(s.Errors) > 0 {
		sb.WriteString("\n" + m.styles.Error.Render("Errors") + "\n")
		for _, e := range s.Errors {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", e.Code, e.Message))
		}
	}

	if len(s.Warnings) > 0 {
		sb.WriteString("\n" + m.styles.Warning.Render(fmt.Sprintf("Warnings (%d)", len(s.Warnings))) + "\n")
		start := max(len(s.Warnings)-maxWarningLines, 0)
		for _, w := range s.Warnings[start:] {
			sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  [%s] %s", w.Code, w.Message)) + "\n")
		}
	}

	if m.runErr != nil && len(s.Errors) == 0 {
		sb.WriteString("\n" + m.styles.Error.Render(m.runErr.Error()) + "\n")
	}

	if !m.finished {
		sb.WriteString("\n" + m.styles.Muted.Render("q: cancel"))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}
