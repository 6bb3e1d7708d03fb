package runtime

import (
	"context"
	"fmt"

	"hellorun/internal/messages"
	"hellorun/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// ─────────────────── RUN EVENTS ─────────────────────
//
// Run lifecycle events only feed the append-only activity log. The result
// box and the tool buttons are re-rendered from the surface document by the
// KV watcher, so the page structure always reflects the stored state and the
// log keeps the raw event history.

func appendActivity(sse *datastar.ServerSentEventGenerator, line string, isErr bool) error {
	return sse.MergeFragmentTempl(
		components.ActivityLine(line, isErr),
		datastar.WithSelectorID("run-activity"),
		datastar.WithMergeAppend(),
	)
}

func renderRunStarted(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.RunStartedEvent) error {
	return appendActivity(sse, fmt.Sprintf("run %s started (%s)", evt.RunID, evt.ToolID), false)
}

func renderRunExit(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.RunExitEvent) error {
	line := fmt.Sprintf("run %s exited with code %d", evt.RunID, evt.ExitCode)
	if evt.Truncated {
		line += " (output truncated)"
	}
	return appendActivity(sse, line, !evt.Succeeded())
}

func renderRunError(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.RunErrorEvent) error {
	return appendActivity(sse, fmt.Sprintf("run %s failed to launch: %s", evt.RunID, evt.Error), true)
}

func renderRunRejected(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.RunRejectedEvent) error {
	return appendActivity(sse, fmt.Sprintf("run of %s rejected: %s", evt.ToolID, evt.Reason), true)
}

// ─────────────────── CONSOLE EVENTS ───────────────────

func renderConsoleFreeze(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.ConsoleFreezeEvent) error {
	// 1. append frozen line
	if err := sse.MergeFragmentTempl(
		components.ConsoleFrozenLine(evt.Line, evt.Output),
		datastar.WithSelectorID("console-frozen"),
		datastar.WithMergeAppend(),
	); err != nil {
		return err
	}

	// 2. replace live prompt
	return sse.MergeFragmentTempl(
		components.ConsolePrompt(),
		datastar.WithSelectorID("live-prompt"),
	)
}

// ViewDoc event swaps rendered markdown into the doc panel.
func renderConsoleViewDoc(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator, evt messages.ConsoleViewDocEvent) error {
	if len(evt.Paths) == 0 {
		return nil
	}
	return sse.MergeFragmentTempl(components.DocMarkdown(evt.Paths))
}

// ─────────────────── REGISTRY ──────────────────────────

func init() {
	Specs = []RendererSpec{
		// run lifecycle
		{Pattern: messages.RunStartedSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.RunStartedEvent](subj, renderRunStarted)
		}},
		{Pattern: messages.RunExitSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.RunExitEvent](subj, renderRunExit)
		}},
		{Pattern: messages.RunErrorSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.RunErrorEvent](subj, renderRunError)
		}},
		{Pattern: messages.RunRejectedSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.RunRejectedEvent](subj, renderRunRejected)
		}},

		// console
		{Pattern: messages.ConsoleFreezeSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.ConsoleFreezeEvent](subj, renderConsoleFreeze)
		}},
		{Pattern: messages.ConsoleViewDocSubjectPattern, Build: func(subj string) Renderer {
			return newTypedRenderer[messages.ConsoleViewDocEvent](subj, renderConsoleViewDoc)
		}},
	}
}
