package surface

import (
	"encoding/json"
	"testing"

	"hellorun/internal/messages"
	"hellorun/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataDefaults(t *testing.T) {
	t.Run("empty bytes", func(t *testing.T) {
		st, err := LoadData(nil)
		require.NoError(t, err)
		assert.Equal(t, ViewHello, st.View)
		assert.Nil(t, st.Run)
	})

	t.Run("empty object", func(t *testing.T) {
		st, err := LoadData([]byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, ViewHello, st.View)
	})

	t.Run("idle slot when never ran", func(t *testing.T) {
		st, err := LoadData(nil)
		require.NoError(t, err)
		assert.Equal(t, runner.StatusIdle, st.RunOrIdle().Status)
		assert.False(t, st.Run.InFlight())
	})
}

func TestLoadDataRejectsUnknownView(t *testing.T) {
	_, err := LoadData([]byte(`{"view":"dashboard"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid view")
}

func TestLoadDataRejectsMalformedSnapshot(t *testing.T) {
	_, err := LoadData([]byte(`{"run":{"status":"Exploded"}}`))
	assert.Error(t, err)
}

func TestStateRoundTrip(t *testing.T) {
	code := 0
	st := State{
		View: ViewTools,
		Run: &RunSnapshot{
			RunID:    "run-1",
			ToolID:   "list-root",
			Status:   runner.StatusSucceeded,
			Text:     "total 64",
			ExitCode: &code,
		},
	}

	raw, err := st.Encode()
	require.NoError(t, err)

	loaded, err := LoadData(raw)
	require.NoError(t, err)
	assert.Equal(t, ViewTools, loaded.View)
	require.NotNil(t, loaded.Run)
	assert.Equal(t, runner.StatusSucceeded, loaded.Run.Status)
	assert.Equal(t, "total 64", loaded.Run.Text)
	require.NotNil(t, loaded.Run.ExitCode)
	assert.Equal(t, 0, *loaded.Run.ExitCode)
}

func TestDefaultViewOmittedFromStorage(t *testing.T) {
	st := State{View: DefaultView}
	d, err := st.Raw()
	require.NoError(t, err)
	assert.Empty(t, d.View)
}

func TestSubscriptionsCoverRunAndConsole(t *testing.T) {
	subs := Subscriptions("surf-1")
	assert.Equal(t, []string{
		"event.run.surf-1.*.started",
		"event.run.surf-1.*.exit",
		"event.run.surf-1.*.error",
		"event.run.surf-1.rejected",
		"event.console.surf-1.freeze",
		"event.console.surf-1.viewdoc",
	}, subs)
}

func TestSnapshotTransitions(t *testing.T) {
	t.Run("running before dispatch", func(t *testing.T) {
		snap := SnapshotFromStarted(*messages.NewRunStartedEvent("s", "run-1", "kernel"))
		assert.Equal(t, runner.StatusRunning, snap.Status)
		assert.True(t, snap.InFlight())
		assert.Nil(t, snap.ExitCode)
	})

	t.Run("exit zero is succeeded", func(t *testing.T) {
		snap := SnapshotFromExit(*messages.NewRunExitEvent("s", "run-1", "kernel", 0, "Linux"))
		assert.Equal(t, runner.StatusSucceeded, snap.Status)
		require.NotNil(t, snap.ExitCode)
		assert.Equal(t, 0, *snap.ExitCode)
	})

	t.Run("exit nonzero is failed with code", func(t *testing.T) {
		snap := SnapshotFromExit(*messages.NewRunExitEvent("s", "run-1", "git-status", 128, "fatal: not a git repository"))
		assert.Equal(t, runner.StatusFailed, snap.Status)
		require.NotNil(t, snap.ExitCode)
		assert.Equal(t, 128, *snap.ExitCode)
		assert.Equal(t, "fatal: not a git repository", snap.Text)
	})

	t.Run("launch error is failed without code", func(t *testing.T) {
		snap := SnapshotFromError(*messages.NewRunErrorEvent("s", "run-1", "kernel", "launch failed: fork/exec /nope: no such file or directory"))
		assert.Equal(t, runner.StatusFailed, snap.Status)
		assert.Nil(t, snap.ExitCode)
		assert.Contains(t, snap.Text, "launch failed")
	})

	t.Run("exit conversion keeps truncation", func(t *testing.T) {
		evt := messages.NewRunExitEvent("s", "run-2", "disk-free", 0, "partial").WithTruncated(true)
		snap := SnapshotFromExit(*evt)
		assert.True(t, snap.Truncated)
		assert.Equal(t, "run-2", snap.RunID)
	})
}

func TestSnapshotJSONStatusIsText(t *testing.T) {
	snap := SnapshotFromStarted(*messages.NewRunStartedEvent("s", "run-1", "kernel"))
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"running"`)
}
