package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// =============================================================================
// CONSTRUCTORS - Easy message creation
// =============================================================================

// NewToolRunCommand creates a tool run command
func NewToolRunCommand(toolID, surfaceID string) *ToolRunCommand {
	return &ToolRunCommand{
		ToolID:    toolID,
		SurfaceID: surfaceID,
	}
}

// WithCorrelation adds correlation ID to tool run command
func (c *ToolRunCommand) WithCorrelation(id string) *ToolRunCommand {
	c.CorrelationID = id
	return c
}

// NewSurfaceViewCommand creates a view switch command
func NewSurfaceViewCommand(surfaceID, view string) *SurfaceViewCommand {
	return &SurfaceViewCommand{
		SurfaceID: surfaceID,
		View:      view,
	}
}

// NewSurfacePatchCommand creates a merge patch command
func NewSurfacePatchCommand(surfaceID string, patch json.RawMessage) *SurfacePatchCommand {
	return &SurfacePatchCommand{
		SurfaceID: surfaceID,
		Patch:     patch,
		Type:      PatchMerge,
	}
}

// WithType selects the patch dialect
func (c *SurfacePatchCommand) WithType(t PatchType) *SurfacePatchCommand {
	c.Type = t
	return c
}

// NewRunStartedEvent creates a run started event
func NewRunStartedEvent(surfaceID, runID, toolID string) *RunStartedEvent {
	return &RunStartedEvent{
		SurfaceID: surfaceID,
		RunID:     runID,
		ToolID:    toolID,
		StartedAt: time.Now(),
	}
}

// WithCorrelation adds correlation ID to run started event
func (e *RunStartedEvent) WithCorrelation(id string) *RunStartedEvent {
	e.CorrelationID = id
	return e
}

// NewRunExitEvent creates a run exit event
func NewRunExitEvent(surfaceID, runID, toolID string, exitCode int, text string) *RunExitEvent {
	return &RunExitEvent{
		SurfaceID: surfaceID,
		RunID:     runID,
		ToolID:    toolID,
		ExitCode:  exitCode,
		Text:      text,
		ExitedAt:  time.Now(),
	}
}

// WithTruncated marks the captured text as cut off at the output cap
func (e *RunExitEvent) WithTruncated(truncated bool) *RunExitEvent {
	e.Truncated = truncated
	return e
}

// WithCorrelation adds correlation ID to run exit event
func (e *RunExitEvent) WithCorrelation(id string) *RunExitEvent {
	e.CorrelationID = id
	return e
}

// NewRunErrorEvent creates a run error event for a launch failure
func NewRunErrorEvent(surfaceID, runID, toolID, errorMsg string) *RunErrorEvent {
	return &RunErrorEvent{
		SurfaceID:  surfaceID,
		RunID:      runID,
		ToolID:     toolID,
		Error:      errorMsg,
		OccurredAt: time.Now(),
	}
}

// WithCorrelation adds correlation ID to run error event
func (e *RunErrorEvent) WithCorrelation(id string) *RunErrorEvent {
	e.CorrelationID = id
	return e
}

// NewRunRejectedEvent creates a run rejected event
func NewRunRejectedEvent(surfaceID, toolID, reason string) *RunRejectedEvent {
	return &RunRejectedEvent{
		SurfaceID:  surfaceID,
		ToolID:     toolID,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

// WithCorrelation adds correlation ID to run rejected event
func (e *RunRejectedEvent) WithCorrelation(id string) *RunRejectedEvent {
	e.CorrelationID = id
	return e
}

// NewConsoleCommandMessage creates a console command message
func NewConsoleCommandMessage(surfaceID, line string) *ConsoleCommandMessage {
	return &ConsoleCommandMessage{
		SurfaceID: surfaceID,
		Line:      line,
	}
}

// NewConsoleFreezeEvent creates a console freeze event
func NewConsoleFreezeEvent(surfaceID, line, output string) *ConsoleFreezeEvent {
	return &ConsoleFreezeEvent{
		SurfaceID: surfaceID,
		Line:      line,
		Output:    output,
		FrozenAt:  time.Now(),
	}
}

// NewConsoleViewDocEvent creates a console view doc event
func NewConsoleViewDocEvent(surfaceID string, paths []string) *ConsoleViewDocEvent {
	return &ConsoleViewDocEvent{
		SurfaceID: surfaceID,
		Paths:     paths,
		ViewedAt:  time.Now(),
	}
}

// =============================================================================
// VALIDATION - Implementation of Validate() methods
// =============================================================================

var toolIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateToolRunCommand implements validation for ToolRunCommand
func validateToolRunCommand(c ToolRunCommand) error {
	if c.ToolID == "" {
		return fmt.Errorf("tool_id is required")
	}
	if !toolIDRegex.MatchString(c.ToolID) {
		return fmt.Errorf("tool_id must contain only alphanumeric characters, hyphens, and underscores")
	}
	if c.SurfaceID == "" {
		return fmt.Errorf("surface_id is required")
	}
	return nil
}

// validateSurfaceViewCommand implements validation for SurfaceViewCommand
func validateSurfaceViewCommand(c SurfaceViewCommand) error {
	if c.SurfaceID == "" {
		return fmt.Errorf("surface_id is required")
	}
	if c.View != "hello" && c.View != "tools" {
		return fmt.Errorf("view must be 'hello' or 'tools'")
	}
	return nil
}

// validateSurfacePatchCommand implements validation for SurfacePatchCommand
func validateSurfacePatchCommand(c SurfacePatchCommand) error {
	if c.SurfaceID == "" {
		return fmt.Errorf("surface_id is required")
	}
	if len(c.Patch) == 0 {
		return fmt.Errorf("patch is required")
	}
	switch c.Type {
	case "", PatchMerge, PatchJSONPatch:
	default:
		return fmt.Errorf("type must be 'merge' or 'jsonpatch'")
	}
	var probe any
	if err := json.Unmarshal(c.Patch, &probe); err != nil {
		return fmt.Errorf("patch must be valid JSON: %w", err)
	}
	return nil
}

// =============================================================================
// PUBLISHER - Type-safe message publishing
// =============================================================================

// Publisher provides type-safe message publishing
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new type-safe publisher
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishCommand publishes a command with validation
func (p *Publisher) PublishCommand(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	_, err = p.js.Publish(ctx, cmd.Subject(), data)
	if err != nil {
		return fmt.Errorf("publish command: %w", err)
	}

	return nil
}

// PublishEvent publishes an event with validation
func (p *Publisher) PublishEvent(ctx context.Context, evt Event) error {
	if err := evt.Validate(); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, evt.Subject(), data)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// =============================================================================
// UTILITIES - Helper functions for common operations
// =============================================================================

// BuildCommand creates a typed command from UI form data
func BuildCommand(messageType string, data map[string]any) (Command, error) {
	switch messageType {
	case "ToolRunCommand":
		toolID, _ := data["tool_id"].(string)
		surfaceID, _ := data["surface_id"].(string)
		cmd := NewToolRunCommand(toolID, surfaceID)
		if corrID, ok := data["correlation_id"].(string); ok && corrID != "" {
			cmd.CorrelationID = corrID
		}
		return cmd, nil

	case "SurfaceViewCommand":
		surfaceID, _ := data["surface_id"].(string)
		view, _ := data["view"].(string)
		return NewSurfaceViewCommand(surfaceID, view), nil

	case "SurfacePatchCommand":
		surfaceID, _ := data["surface_id"].(string)
		cmd := &SurfacePatchCommand{SurfaceID: surfaceID, Type: PatchMerge}
		switch patch := data["patch"].(type) {
		case string:
			cmd.Patch = json.RawMessage(patch)
		case map[string]any, []any:
			raw, err := json.Marshal(patch)
			if err != nil {
				return nil, fmt.Errorf("marshal patch: %w", err)
			}
			cmd.Patch = raw
		}
		if t, ok := data["type"].(string); ok && t != "" {
			cmd.Type = PatchType(t)
		}
		return cmd, nil

	case "ConsoleCommandMessage":
		surfaceID, _ := data["surface_id"].(string)
		line, _ := data["line"].(string)
		return NewConsoleCommandMessage(surfaceID, line), nil

	default:
		return nil, fmt.Errorf("unknown command type: %s", messageType)
	}
}
