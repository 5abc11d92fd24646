package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/history"
	"mdslides/internal/loader"
	"mdslides/internal/pipeline"
)

var stageFiles = map[string]string{
	"01_idea.md": `# Idea

## 基本方針
効率性と実用性を重視し、批判的に検討し、構造化されたワークフローで進める。

## 評価の観点
技術的な実現可能性と拡張性、ビジネス面の実装コスト、ユーザビリティを評価する。
`,
	"02_draft.md": `# Quarterly review

## 目次
1. Results
2. Next steps

## Results
**This section shows the quarterly results in numbers.**

## まとめ
The quarter went well and the plan for next quarter is clear.
`,
	"03_patterns.md": `# Quarterly review

## Results
売上は50%増、KPI達成率50%、利益率50%、成長率50%、シェア50%。数字で四半期の成果を示す。
`,
	"04_slides.md": `# Quarterly review

## Results
売上は50%増、KPI達成率50%、利益率50%、成長率50%、シェア50%

## Next steps
We keep the current plan and review progress every month with the team.
`,
	"05_output.md": `# Output

## Output
Render the deck as Marp markdown and as a standalone HTML slideshow for review.
`,
}

// setupWorkspace points the global config at a fresh temp workspace.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()

	ws := t.TempDir()
	in := filepath.Join(ws, "docs")
	require.NoError(t, os.MkdirAll(in, 0755))
	for name, body := range stageFiles {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(body), 0644))
	}

	cfg = config.DefaultConfig()
	cfg.Workspace = ws
	cfg.Input.Dir = in
	cfg.Output.Dir = filepath.Join(ws, "out")

	runTUI, runInputDir, runOutputDir, runNoHistory = false, "", "", false
	catalogPath = ""
	t.Cleanup(func() { cfg = nil })
	return ws
}

func TestRunWritesArtifactsAndHistory(t *testing.T) {
	setupWorkspace(t)

	require.NoError(t, runPipeline(&cobra.Command{}, nil))

	for _, name := range []string{cfg.Output.MarpFile, cfg.Output.HTMLFile, cfg.Output.ReportFile} {
		info, err := os.Stat(outputPath(name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	data, err := os.ReadFile(outputPath(cfg.Output.ReportFile))
	require.NoError(t, err)
	var report pipeline.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.True(t, report.Completed)
	assert.Equal(t, "Quarterly review", report.Title)

	store, err := history.Open(cfg.HistoryPath())
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
}

func TestRunWithMissingStageWritesReportOnly(t *testing.T) {
	setupWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Input.Dir, "04_slides.md")))
	runNoHistory = true

	err := runPipeline(&cobra.Command{}, nil)
	require.Error(t, err)

	_, err = os.Stat(outputPath(cfg.Output.ReportFile))
	assert.NoError(t, err)
	_, err = os.Stat(outputPath(cfg.Output.HTMLFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.HistoryPath())
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteDropsReportFromEarlierRun(t *testing.T) {
	setupWorkspace(t)
	orch := newOrchestrator(catalog.Default(), nil)

	first := execute(context.Background(), orch)
	require.NoError(t, first.Err)
	require.NotNil(t, first.Report)
	assert.True(t, first.Report.Completed)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Dir, "02_draft.md"), nil, 0644))

	second := execute(context.Background(), orch)
	require.Error(t, second.Err)
	var verr *loader.ValidationError
	assert.ErrorAs(t, second.Err, &verr)
	assert.Nil(t, second.Result)
	assert.Nil(t, second.Report)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Dir, "02_draft.md"), []byte(stageFiles["02_draft.md"]), 0644))

	third := execute(context.Background(), orch)
	require.NoError(t, third.Err)
	require.NotNil(t, third.Report)
	assert.NotEqual(t, first.Report.RunID, third.Report.RunID)
}

func TestValidateReportsErrors(t *testing.T) {
	setupWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Input.Dir, "02_draft.md"), nil, 0644))

	err := validateCmd.RunE(&cobra.Command{}, nil)
	assert.ErrorIs(t, err, errInvalidInput)
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	ws := t.TempDir()
	workspace, verbose = ws, true
	defer func() { workspace, verbose = "", false }()

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ws, c.Workspace)
	assert.True(t, c.Logging.DebugMode)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestStripFrontMatter(t *testing.T) {
	assert.Equal(t, "# Slide\n", stripFrontMatter("---\nmarp: true\n---\n# Slide\n"))
	assert.Equal(t, "# Slide\n", stripFrontMatter("# Slide\n"))
	assert.Equal(t, "---\nunterminated", stripFrontMatter("---\nunterminated"))
}
