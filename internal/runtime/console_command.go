package runtime

import (
	"context"

	"hellorun/internal/surface"
)

// CommandResult defines what the console should display after execution.
type CommandResult struct {
	Output string
}

// ConsoleCommand is the interface for all console commands.
type ConsoleCommand interface {
	// Name returns the command name, e.g. "help".
	Name() string
	// Help returns the help text for the command.
	Help() string
	// Execute runs the command against the given surface, state snapshot, and
	// arguments, returning a CommandResult for output. State is read-only
	// here: commands that change the surface publish to the COMMAND stream
	// and let the owning engine do the write.
	Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult
}
