package messages

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// CORE INTERFACES
// =============================================================================

// Message represents any message in the system
type Message interface {
	Subject() string
	Validate() error
}

// Command represents an input that requests something to happen
type Command interface {
	Message
	IsCommand()
}

// Event represents something that has happened
type Event interface {
	Message
	IsEvent()
	Timestamp() time.Time
}

// =============================================================================
// SUBJECT CONSTANTS - Single source of truth for all subjects
// =============================================================================

const (
	// Tool domain - Commands
	ToolRunSubjectPattern = "command.tool.*.run" // * = tool id

	// Surface domain - Commands
	SurfaceViewSetSubject = "command.surface.view.set"
	SurfacePatchSubject   = "command.surface.patch"
	SurfaceCommandPattern = "command.surface.>"

	// Run domain - Events
	RunStartedSubjectPattern  = "event.run.*.*.started" // surface id, run id
	RunExitSubjectPattern     = "event.run.*.*.exit"
	RunErrorSubjectPattern    = "event.run.*.*.error"
	RunRejectedSubjectPattern = "event.run.*.rejected" // * = surface id

	// Console domain
	ConsoleCommandSubjectPattern = "console.surface.*.command" // * = surface id
	ConsoleFreezeSubjectPattern  = "event.console.*.freeze"
	ConsoleViewDocSubjectPattern = "event.console.*.viewdoc"
)

// =============================================================================
// TOOL DOMAIN - COMMANDS
// =============================================================================

// ToolRunCommand requests one invocation of a catalog tool on behalf of a
// display surface. The executable path and argv are fixed by the catalog
// entry; the command carries no arguments of its own.
type ToolRunCommand struct {
	ToolID        string `json:"-"` // Derived from subject
	SurfaceID     string `json:"surface_id" required:"true" placeholder:"surface uuid"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (c ToolRunCommand) Subject() string {
	return fmt.Sprintf("command.tool.%s.run", c.ToolID)
}
func (c ToolRunCommand) IsCommand() {}
func (c ToolRunCommand) Validate() error {
	return validateToolRunCommand(c)
}

// =============================================================================
// SURFACE DOMAIN - COMMANDS
// =============================================================================

// SurfaceViewCommand switches a surface between the demo views.
type SurfaceViewCommand struct {
	SurfaceID string `json:"surface_id" required:"true"`
	View      string `json:"view" required:"true" field_type:"select" options:"hello,tools"`
}

func (c SurfaceViewCommand) Subject() string { return SurfaceViewSetSubject }
func (c SurfaceViewCommand) IsCommand()      {}
func (c SurfaceViewCommand) Validate() error {
	return validateSurfaceViewCommand(c)
}

// PatchType selects the patch dialect carried by a SurfacePatchCommand.
type PatchType string

const (
	PatchMerge     PatchType = "merge"     // RFC 7386 merge patch
	PatchJSONPatch PatchType = "jsonpatch" // RFC 6902 operation list
)

// SurfacePatchCommand applies a JSON patch to the stored surface state.
// An empty Type means merge.
type SurfacePatchCommand struct {
	SurfaceID string          `json:"surface_id" required:"true"`
	Patch     json.RawMessage `json:"patch" required:"true" field_type:"json" placeholder:"{\"view\":\"tools\"}"`
	Type      PatchType       `json:"type,omitempty" field_type:"select" options:"merge,jsonpatch"`
}

func (c SurfacePatchCommand) Subject() string { return SurfacePatchSubject }
func (c SurfacePatchCommand) IsCommand()      {}
func (c SurfacePatchCommand) Validate() error {
	return validateSurfacePatchCommand(c)
}

// =============================================================================
// RUN DOMAIN - EVENTS
// =============================================================================

// RunStartedEvent records the Running transition for one invocation. The
// engine publishes it before the process is dispatched, so consumers always
// observe it ahead of the terminal event carrying the same run id.
type RunStartedEvent struct {
	SurfaceID     string    `json:"surface_id"`
	RunID         string    `json:"run_id"`
	ToolID        string    `json:"tool_id"`
	StartedAt     time.Time `json:"started_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e RunStartedEvent) Subject() string {
	return fmt.Sprintf("event.run.%s.%s.started", e.SurfaceID, e.RunID)
}
func (e RunStartedEvent) IsEvent()             {}
func (e RunStartedEvent) Timestamp() time.Time { return e.StartedAt }
func (e RunStartedEvent) Validate() error      { return nil }

// RunExitEvent is the terminal event for a process that launched and
// terminated on its own. Succeeded versus Failed is decided by the exit
// code alone; Text carries the full combined stdout+stderr capture.
type RunExitEvent struct {
	SurfaceID     string    `json:"surface_id"`
	RunID         string    `json:"run_id"`
	ToolID        string    `json:"tool_id"`
	ExitCode      int       `json:"exit_code"`
	Text          string    `json:"text"`
	Truncated     bool      `json:"truncated,omitempty"`
	ExitedAt      time.Time `json:"exited_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e RunExitEvent) Subject() string {
	return fmt.Sprintf("event.run.%s.%s.exit", e.SurfaceID, e.RunID)
}
func (e RunExitEvent) IsEvent()             {}
func (e RunExitEvent) Timestamp() time.Time { return e.ExitedAt }
func (e RunExitEvent) Validate() error      { return nil }

// Succeeded reports whether the exit code signals success.
func (e RunExitEvent) Succeeded() bool { return e.ExitCode == 0 }

// RunErrorEvent is the terminal event for a process that never launched.
// It deliberately carries no exit code: none exists.
type RunErrorEvent struct {
	SurfaceID     string    `json:"surface_id"`
	RunID         string    `json:"run_id"`
	ToolID        string    `json:"tool_id"`
	Error         string    `json:"error"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e RunErrorEvent) Subject() string {
	return fmt.Sprintf("event.run.%s.%s.error", e.SurfaceID, e.RunID)
}
func (e RunErrorEvent) IsEvent()             {}
func (e RunErrorEvent) Timestamp() time.Time { return e.OccurredAt }
func (e RunErrorEvent) Validate() error      { return nil }

// RunRejectedEvent reports that a run command was dropped without starting
// a process: the surface already had an invocation in flight, or the tool
// id is not in the catalog.
type RunRejectedEvent struct {
	SurfaceID     string    `json:"surface_id"`
	ToolID        string    `json:"tool_id"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e RunRejectedEvent) Subject() string {
	return fmt.Sprintf("event.run.%s.rejected", e.SurfaceID)
}
func (e RunRejectedEvent) IsEvent()             {}
func (e RunRejectedEvent) Timestamp() time.Time { return e.OccurredAt }
func (e RunRejectedEvent) Validate() error      { return nil }

// =============================================================================
// CONSOLE DOMAIN
// =============================================================================

// ConsoleCommandMessage represents a line entered in the surface console
type ConsoleCommandMessage struct {
	SurfaceID string `json:"-"` // Derived from subject
	Line      string `json:"line" required:"true" placeholder:"help"`
}

func (c ConsoleCommandMessage) Subject() string {
	return fmt.Sprintf("console.surface.%s.command", c.SurfaceID)
}
func (c ConsoleCommandMessage) IsCommand() {}
func (c ConsoleCommandMessage) Validate() error {
	if c.SurfaceID == "" {
		return fmt.Errorf("surface_id is required")
	}
	if c.Line == "" {
		return fmt.Errorf("line is required")
	}
	return nil
}

// ConsoleFreezeEvent represents console output to be frozen/displayed
type ConsoleFreezeEvent struct {
	SurfaceID string    `json:"surface_id"`
	Line      string    `json:"line"`
	Output    string    `json:"output"`
	FrozenAt  time.Time `json:"frozen_at"`
}

func (e ConsoleFreezeEvent) Subject() string {
	return fmt.Sprintf("event.console.%s.freeze", e.SurfaceID)
}
func (e ConsoleFreezeEvent) IsEvent()             {}
func (e ConsoleFreezeEvent) Timestamp() time.Time { return e.FrozenAt }
func (e ConsoleFreezeEvent) Validate() error      { return nil }

// ConsoleViewDocEvent triggers document viewing on the surface
type ConsoleViewDocEvent struct {
	SurfaceID string    `json:"surface_id"`
	Paths     []string  `json:"paths"`
	ViewedAt  time.Time `json:"viewed_at"`
}

func (e ConsoleViewDocEvent) Subject() string {
	return fmt.Sprintf("event.console.%s.viewdoc", e.SurfaceID)
}
func (e ConsoleViewDocEvent) IsEvent()             {}
func (e ConsoleViewDocEvent) Timestamp() time.Time { return e.ViewedAt }
func (e ConsoleViewDocEvent) Validate() error      { return nil }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Subject builder functions for dynamic subjects
func ToolRunSubject(toolID string) string {
	return fmt.Sprintf("command.tool.%s.run", toolID)
}

func RunStartedSubject(surfaceID, runID string) string {
	return fmt.Sprintf("event.run.%s.%s.started", surfaceID, runID)
}

func RunExitSubject(surfaceID, runID string) string {
	return fmt.Sprintf("event.run.%s.%s.exit", surfaceID, runID)
}

func RunErrorSubject(surfaceID, runID string) string {
	return fmt.Sprintf("event.run.%s.%s.error", surfaceID, runID)
}

func RunRejectedSubject(surfaceID string) string {
	return fmt.Sprintf("event.run.%s.rejected", surfaceID)
}

// RunEventsSubject matches every run event for one surface.
func RunEventsSubject(surfaceID string) string {
	return fmt.Sprintf("event.run.%s.>", surfaceID)
}

func ConsoleCommandSubject(surfaceID string) string {
	return fmt.Sprintf("console.surface.%s.command", surfaceID)
}

func ConsoleFreezeSubject(surfaceID string) string {
	return fmt.Sprintf("event.console.%s.freeze", surfaceID)
}

func ConsoleViewDocSubject(surfaceID string) string {
	return fmt.Sprintf("event.console.%s.viewdoc", surfaceID)
}
