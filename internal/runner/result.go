package runner

import "fmt"

// Status tracks a single invocation through its lifecycle. Transitions are
// strictly Idle → Running → (Succeeded | Failed); the terminal states are
// final for a given invocation.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

var statusNames = map[Status]string{
	StatusIdle:      "idle",
	StatusRunning:   "running",
	StatusSucceeded: "succeeded",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// MarshalText lets Status round-trip through JSON as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// NoOutput is surfaced in place of an empty capture buffer so Text is never
// empty once a run reaches a terminal state.
const NoOutput = "(no output)"

// Result is the outcome of one process invocation.
type Result struct {
	// Status is Succeeded only for normal termination with exit code 0.
	Status Status `json:"status"`

	// Text holds the combined stdout+stderr capture, or a diagnostic when
	// the process never launched. Never empty on a terminal state.
	Text string `json:"text"`

	// ExitCode is set only when the process terminated normally. A launch
	// failure leaves it nil.
	ExitCode *int `json:"exit_code,omitempty"`

	// Truncated is true when the capture exceeded the launcher's output cap.
	Truncated bool `json:"truncated,omitempty"`
}

// Launched reports whether the process ran to termination (an exit code was
// observed), as opposed to failing before start.
func (r Result) Launched() bool {
	return r.ExitCode != nil
}
