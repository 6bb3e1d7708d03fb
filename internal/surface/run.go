package surface

import (
	"time"

	"hellorun/internal/messages"
	"hellorun/internal/runner"
)

// RunSnapshot is the result slot a surface renders. The zero value reads as
// Idle, which is exactly what a surface that never ran anything shows.
type RunSnapshot struct {
	RunID     string        `json:"run_id,omitempty"`
	ToolID    string        `json:"tool_id,omitempty"`
	Status    runner.Status `json:"status"`
	Text      string        `json:"text,omitempty"`
	ExitCode  *int          `json:"exit_code,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	UpdatedAt time.Time     `json:"updated_at,omitempty"`
}

// InFlight reports whether a run is currently executing.
func (s *RunSnapshot) InFlight() bool {
	return s != nil && s.Status == runner.StatusRunning
}

// RunOrIdle returns the snapshot to render, substituting an Idle zero value
// when the surface never triggered a tool.
func (st *State) RunOrIdle() RunSnapshot {
	if st.Run == nil {
		return RunSnapshot{Status: runner.StatusIdle}
	}
	return *st.Run
}

// SnapshotFromStarted mirrors a RunStartedEvent into the slot value. It is
// written synchronously when a run is accepted, before the process is
// dispatched.
func SnapshotFromStarted(evt messages.RunStartedEvent) RunSnapshot {
	return RunSnapshot{
		RunID:     evt.RunID,
		ToolID:    evt.ToolID,
		Status:    runner.StatusRunning,
		UpdatedAt: evt.StartedAt,
	}
}

// SnapshotFromExit mirrors a RunExitEvent into the slot value. The status
// is decided by the exit code alone.
func SnapshotFromExit(evt messages.RunExitEvent) RunSnapshot {
	status := runner.StatusSucceeded
	if evt.ExitCode != 0 {
		status = runner.StatusFailed
	}
	code := evt.ExitCode
	return RunSnapshot{
		RunID:     evt.RunID,
		ToolID:    evt.ToolID,
		Status:    status,
		Text:      evt.Text,
		ExitCode:  &code,
		Truncated: evt.Truncated,
		UpdatedAt: evt.ExitedAt,
	}
}

// SnapshotFromError mirrors a RunErrorEvent into the slot value. Launch
// failures are Failed with diagnostic text and no exit code.
func SnapshotFromError(evt messages.RunErrorEvent) RunSnapshot {
	return RunSnapshot{
		RunID:     evt.RunID,
		ToolID:    evt.ToolID,
		Status:    runner.StatusFailed,
		Text:      evt.Error,
		UpdatedAt: evt.OccurredAt,
	}
}
