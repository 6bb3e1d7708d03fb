package runtime

import (
	"testing"

	"hellorun/internal/messages"
	"hellorun/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolIDFromSubject(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		{"command.tool.kernel.run", "kernel"},
		{"command.tool.git-status.run", "git-status"},
		{"command.tool.kernel.stop", ""},
		{"command.surface.view.set", ""},
		{"command.tool.run", ""},
		{"command.tool.a.b.run", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToolIDFromSubject(tc.subject), "subject %q", tc.subject)
	}
}

func TestTerminalEventFor_Exit(t *testing.T) {
	in := messages.ToolRunCommand{ToolID: "git-status", SurfaceID: "surf-1", CorrelationID: "run git-status"}
	code := 128
	res := runner.Result{
		Status:   runner.StatusFailed,
		Text:     "fatal: not a git repository",
		ExitCode: &code,
	}

	evt, snap := terminalEventFor(in, "run-1", res)

	exit, ok := evt.(*messages.RunExitEvent)
	require.True(t, ok, "launched result must produce an exit event, got %T", evt)
	assert.Equal(t, 128, exit.ExitCode)
	assert.Equal(t, "fatal: not a git repository", exit.Text)
	assert.Equal(t, "run git-status", exit.CorrelationID)
	assert.Equal(t, "event.run.surf-1.run-1.exit", exit.Subject())

	// The stored slot mirrors the event.
	assert.Equal(t, runner.StatusFailed, snap.Status)
	require.NotNil(t, snap.ExitCode)
	assert.Equal(t, 128, *snap.ExitCode)
	assert.Equal(t, exit.Text, snap.Text)
}

func TestTerminalEventFor_ExitZero(t *testing.T) {
	in := messages.ToolRunCommand{ToolID: "kernel", SurfaceID: "surf-1"}
	code := 0
	res := runner.Result{
		Status:    runner.StatusSucceeded,
		Text:      "Linux host 6.1",
		ExitCode:  &code,
		Truncated: true,
	}

	evt, snap := terminalEventFor(in, "run-2", res)

	exit, ok := evt.(*messages.RunExitEvent)
	require.True(t, ok)
	assert.True(t, exit.Succeeded())
	assert.True(t, exit.Truncated)
	assert.Equal(t, runner.StatusSucceeded, snap.Status)
	assert.True(t, snap.Truncated)
}

func TestTerminalEventFor_LaunchFailure(t *testing.T) {
	in := messages.ToolRunCommand{ToolID: "kernel", SurfaceID: "surf-1"}
	res := runner.Result{
		Status: runner.StatusFailed,
		Text:   "launch failed: fork/exec /nope: no such file or directory",
	}

	evt, snap := terminalEventFor(in, "run-3", res)

	errEvt, ok := evt.(*messages.RunErrorEvent)
	require.True(t, ok, "never-launched result must produce an error event, got %T", evt)
	assert.Contains(t, errEvt.Error, "launch failed")
	assert.Equal(t, "event.run.surf-1.run-3.error", errEvt.Subject())

	// Failed with the diagnostic, and deliberately no exit code.
	assert.Equal(t, runner.StatusFailed, snap.Status)
	assert.Nil(t, snap.ExitCode)
	assert.Contains(t, snap.Text, "launch failed")
}
