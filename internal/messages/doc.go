// Package messages provides a centralized schema for all NATS messaging contracts.
//
// This package consolidates all message types, subject patterns, and validation logic
// into a single source of truth, providing:
//
//   - Type-safe message construction with compile-time validation
//   - Fluent builder pattern for ergonomic message creation
//   - Centralized subject constants to eliminate hardcoded strings
//   - Validation methods to ensure message integrity
//   - Type-safe publisher for command and event publishing
//
// # Message Types
//
// The package defines two main categories of messages:
//
//   - Commands: Input messages that request something to happen (e.g., ToolRunCommand)
//   - Events: Output messages that indicate something has happened (e.g., RunExitEvent)
//
// # Subject Patterns
//
// All NATS subject patterns are defined as constants, with both pattern forms
// (for consumers) and builder functions (for publishers):
//
//   - Pattern constants: Used for consumer subscriptions (e.g., "command.tool.*.run")
//   - Builder functions: Generate concrete subjects (e.g., ToolRunSubject("kernel") → "command.tool.kernel.run")
//
// # Run Lifecycle
//
// A tool invocation produces a fixed event sequence on the EVENT stream:
// exactly one RunStartedEvent, then exactly one terminal event. The terminal
// event is a RunExitEvent when the process launched and terminated on its
// own (exit code present, zero or not), or a RunErrorEvent when the process
// never launched (no exit code exists). A ToolRunCommand that arrives while
// the surface already has a run in flight produces a RunRejectedEvent and no
// lifecycle events.
//
// # Usage Example
//
//	// Create and publish a command
//	cmd := messages.NewToolRunCommand("kernel", surfaceID).
//	    WithCorrelation("req-123")
//
//	publisher := messages.NewPublisher(js)
//	if err := publisher.PublishCommand(ctx, cmd); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create and publish an event
//	evt := messages.NewRunStartedEvent(surfaceID, runID, "kernel").
//	    WithCorrelation("req-123")
//
//	if err := publisher.PublishEvent(ctx, evt); err != nil {
//	    log.Fatal(err)
//	}
//
// # Domain Organization
//
// Messages are organized by domain:
//
//   - Tool domain: Catalog tool invocation commands
//   - Run domain: Invocation lifecycle events (started, exit, error, rejected)
//   - Surface domain: View switching and state patch commands
//   - Console domain: Console lines and their rendered results
//
// Each domain has its own set of commands and events with appropriate validation.
package messages
