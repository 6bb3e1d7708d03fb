package components

import (
	"context"
	"strings"
	"testing"

	"hellorun/internal/runner"
	"hellorun/internal/surface"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestSurfaceViewHello(t *testing.T) {
	out := render(t, SurfaceView(surface.State{View: surface.ViewHello}, runner.Catalog))

	assert.Contains(t, out, `id="surface-view"`)
	assert.Contains(t, out, "Hello, World!")
	assert.Contains(t, out, "hello-card")
	assert.NotContains(t, out, "tool-btn")
}

func TestSurfaceViewTools(t *testing.T) {
	out := render(t, SurfaceView(surface.State{View: surface.ViewTools}, runner.Catalog))

	for _, tool := range runner.Catalog {
		assert.Contains(t, out, "@post('/tool/"+tool.ID+"/run')")
	}
	assert.Contains(t, out, `id="run-result"`)
	assert.Contains(t, out, "press a button to run a tool")
}

func TestToolButtonsDisabledWhileRunning(t *testing.T) {
	st := surface.State{
		View: surface.ViewTools,
		Run:  &surface.RunSnapshot{RunID: "run-1", ToolID: "kernel", Status: runner.StatusRunning},
	}
	out := render(t, SurfaceView(st, runner.Catalog))

	assert.Equal(t, len(runner.Catalog), strings.Count(out, " disabled>"))
	assert.Contains(t, out, "running kernel")
}

func TestRunResultEscapesProcessOutput(t *testing.T) {
	code := 0
	snap := surface.RunSnapshot{
		RunID:    "run-1",
		ToolID:   "kernel",
		Status:   runner.StatusSucceeded,
		Text:     "<script>alert(1)</script>",
		ExitCode: &code,
	}
	out := render(t, RunResult(snap))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "exit code 0")
}

func TestRunResultLaunchFailureHasNoExitCode(t *testing.T) {
	snap := surface.RunSnapshot{
		RunID:  "run-2",
		ToolID: "kernel",
		Status: runner.StatusFailed,
		Text:   "launch failed: fork/exec /nope: no such file or directory",
	}
	out := render(t, RunResult(snap))

	assert.NotContains(t, out, "exit code")
	assert.Contains(t, out, "result-failed")
	assert.Contains(t, out, "launch failed")
}

func TestRunResultTruncationFlag(t *testing.T) {
	code := 0
	snap := surface.RunSnapshot{
		RunID:     "run-3",
		ToolID:    "list-root",
		Status:    runner.StatusSucceeded,
		Text:      "partial",
		ExitCode:  &code,
		Truncated: true,
	}
	out := render(t, RunResult(snap))

	assert.Contains(t, out, "output truncated")
}

func TestActivityLine(t *testing.T) {
	out := render(t, ActivityLine("run r1 exited with code 0", false))
	assert.Contains(t, out, "activity-line")
	assert.NotContains(t, out, "activity-err")

	out = render(t, ActivityLine("<b>failed</b>", true))
	assert.Contains(t, out, "activity-err")
	assert.Contains(t, out, "&lt;b&gt;failed&lt;/b&gt;")
}

func TestViewNavMarksActive(t *testing.T) {
	out := render(t, ViewNav(surface.ViewTools))

	assert.Contains(t, out, "@post('/surface/view/hello')")
	assert.Contains(t, out, "@post('/surface/view/tools')")
	assert.Equal(t, 1, strings.Count(out, "view-tab-active"))
}
