package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hellorun/internal/messages"
	"hellorun/internal/runner"
	"hellorun/internal/surface"
)

// EchoCommand repeats the provided text back to the user.
// Usage: echo <text>
type EchoCommand struct{ engine *ConsoleEngine }

func (c *EchoCommand) Name() string { return "echo" }
func (c *EchoCommand) Help() string { return "echo <text>            Echo text back" }
func (c *EchoCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	out := ""
	if len(args) > 1 {
		out = strings.Join(args[1:], " ")
	}
	return CommandResult{Output: out}
}

// LSCommand lists the tool catalog.
// Usage: ls tools
type LSCommand struct{ engine *ConsoleEngine }

func (c *LSCommand) Name() string { return "ls" }
func (c *LSCommand) Help() string { return "ls tools               List the tool catalog" }
func (c *LSCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	if len(args) < 2 || args[1] != "tools" {
		return CommandResult{Output: "usage: ls tools"}
	}
	list := make([]string, 0, len(runner.Catalog))
	for _, t := range runner.Catalog {
		list = append(list, fmt.Sprintf("%-12s %s", t.ID, strings.Join(t.Argv(), " ")))
	}
	sort.Strings(list)
	return CommandResult{Output: "available tools:\n  " + strings.Join(list, "\n  ")}
}

// RunCommand launches a catalog tool on this surface.
// Usage: run <tool>
type RunCommand struct{ engine *ConsoleEngine }

func (c *RunCommand) Name() string { return "run" }
func (c *RunCommand) Help() string { return "run <tool>             Launch a catalog tool on this surface" }
func (c *RunCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	if len(args) < 2 {
		return CommandResult{Output: "usage: run <tool>"}
	}
	id := args[1]
	if _, ok := runner.ToolByID(id); !ok {
		return CommandResult{Output: fmt.Sprintf("unknown tool %q (try \"ls tools\")", id)}
	}
	// Early out on the state snapshot. The tool engine still holds the
	// authoritative guard and publishes a rejected event on a race.
	if snap := state.RunOrIdle(); snap.InFlight() {
		return CommandResult{Output: fmt.Sprintf("run %s is still in flight; wait for it to finish", snap.RunID)}
	}
	cmd := messages.NewToolRunCommand(id, surfaceID).WithCorrelation(strings.Join(args, " "))
	if err := c.engine.publisher.PublishCommand(ctx, cmd); err != nil {
		return CommandResult{Output: "error: failed to request run"}
	}
	return CommandResult{Output: "run requested for " + id}
}

// ViewCommand switches the surface view or opens the guide.
// Usage: view <hello|tools|guide>
type ViewCommand struct{ engine *ConsoleEngine }

func (c *ViewCommand) Name() string { return "view" }
func (c *ViewCommand) Help() string { return "view <hello|tools|guide>  Switch the surface view or open the guide" }
func (c *ViewCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	if len(args) < 2 {
		return CommandResult{Output: "usage: view <hello|tools|guide>"}
	}
	target := strings.ToLower(args[1])
	switch {
	case target == "guide" || target == "readme" || target == "readme.md":
		evt := messages.NewConsoleViewDocEvent(surfaceID, []string{"README.md"})
		if err := c.engine.publisher.PublishEvent(ctx, evt); err != nil {
			return CommandResult{Output: "error: failed to open the guide"}
		}
		return CommandResult{Output: "opening the guide"}
	case surface.ValidView(target):
		cmd := messages.NewSurfaceViewCommand(surfaceID, target)
		if err := c.engine.publisher.PublishCommand(ctx, cmd); err != nil {
			return CommandResult{Output: "error: failed to switch view"}
		}
		return CommandResult{Output: "switching view to " + target}
	default:
		return CommandResult{Output: fmt.Sprintf("unknown view %q", target)}
	}
}

// StatusCommand reports the surface's view and last run.
// Usage: status
type StatusCommand struct{ engine *ConsoleEngine }

func (c *StatusCommand) Name() string { return "status" }
func (c *StatusCommand) Help() string { return "status                 Show this surface's view and last run" }
func (c *StatusCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	snap := state.RunOrIdle()
	if snap.Status == runner.StatusIdle {
		return CommandResult{Output: fmt.Sprintf("view %s; no runs yet", state.View)}
	}
	out := fmt.Sprintf("view %s; run %s (%s) is %s", state.View, snap.RunID, snap.ToolID, snap.Status)
	if snap.ExitCode != nil {
		out += fmt.Sprintf(", exit code %d", *snap.ExitCode)
	}
	if snap.Truncated {
		out += ", output truncated"
	}
	return CommandResult{Output: out}
}

// SchemaCommand shows the JSON fields a command type accepts, for poking the
// HTTP command endpoint by hand.
// Usage: schema [type]
type SchemaCommand struct{ engine *ConsoleEngine }

func (c *SchemaCommand) Name() string { return "schema" }
func (c *SchemaCommand) Help() string { return "schema [type]          Show the JSON fields a command type accepts" }
func (c *SchemaCommand) Execute(ctx context.Context, surfaceID string, state surface.State, args []string) CommandResult {
	if len(args) < 2 {
		return CommandResult{Output: "command types: " + strings.Join(messages.GetCommandTypes(), ", ")}
	}
	fields := messages.GetFieldSchemas(args[1])
	if fields == nil {
		return CommandResult{Output: fmt.Sprintf("unknown command type %q", args[1])}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		line := fmt.Sprintf("%-14s %s", f.JSONName, f.Type)
		if f.Required {
			line += " (required)"
		}
		if len(f.Options) > 0 {
			line += " [" + strings.Join(f.Options, "|") + "]"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return CommandResult{Output: args[1] + ": no settable fields"}
	}
	return CommandResult{Output: args[1] + " fields:\n  " + strings.Join(lines, "\n  ")}
}
