package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hellorun/internal/messages"
	"hellorun/internal/metrics"
	"hellorun/internal/runner"
	"hellorun/internal/surface"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// ToolEngine consumes command.tool.*.run and drives the invocation
// lifecycle: guard, Running transition, process execution off the consumer
// goroutine, and exactly one terminal event per accepted run.
//
// The surfaces KV slot and the run events are both written here and nowhere
// else, so every observer sees the same strictly ordered story:
// Running first, then exit or error, never both, never output before start.
type ToolEngine struct {
	js        jetstream.JetStream
	publisher *messages.Publisher
	launcher  *runner.Launcher
	inflight  sync.Map // surfaceID → *runHandle
}

type runHandle struct {
	runID  string
	cancel context.CancelFunc
}

// NewToolEngine sets up the engine. A nil launcher gets default capture and
// PATH handling.
func NewToolEngine(js jetstream.JetStream, launcher *runner.Launcher) *ToolEngine {
	if launcher == nil {
		launcher = &runner.Launcher{}
	}
	slog.Info("ToolEngine initialized", "tools", len(runner.Catalog))
	return &ToolEngine{
		js:        js,
		publisher: messages.NewPublisher(js),
		launcher:  launcher,
	}
}

// Start registers a durable consumer on the COMMAND stream filtered to tool
// run subjects and handles messages until ctx is cancelled.
func (te *ToolEngine) Start(ctx context.Context) error {
	_, err := te.js.CreateOrUpdateConsumer(ctx, "COMMAND", jetstream.ConsumerConfig{
		Durable:        "TOOL_RUN",
		AckPolicy:      jetstream.AckExplicitPolicy,
		FilterSubjects: []string{messages.ToolRunSubjectPattern},
	})
	if err != nil {
		return fmt.Errorf("create TOOL_RUN consumer: %w", err)
	}
	cons, err := te.js.Consumer(ctx, "COMMAND", "TOOL_RUN")
	if err != nil {
		return fmt.Errorf("get TOOL_RUN consumer: %w", err)
	}
	if _, err := cons.Consume(func(msg jetstream.Msg) { te.handleRun(ctx, msg) }); err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() { <-ctx.Done(); te.stopAllRuns() }()
	return nil
}

// ToolIDFromSubject extracts the tool id from a command.tool.<id>.run
// subject, or returns "" if the subject has a different shape.
func ToolIDFromSubject(subj string) string {
	parts := strings.Split(subj, ".")
	if len(parts) != 4 || parts[0] != "command" || parts[1] != "tool" || parts[3] != "run" {
		return ""
	}
	return parts[2]
}

func (te *ToolEngine) handleRun(ctx context.Context, msg jetstream.Msg) {
	var in messages.ToolRunCommand
	if err := json.Unmarshal(msg.Data(), &in); err != nil {
		slog.Warn("tool: bad run payload", "subject", msg.Subject(), "err", err)
		_ = msg.Ack()
		return
	}

	// The subject is the source of truth for the tool id; the payload never
	// carries it.
	in.ToolID = ToolIDFromSubject(msg.Subject())
	if in.ToolID == "" || in.SurfaceID == "" {
		slog.Warn("tool: run command missing identity", "subject", msg.Subject(), "surface", in.SurfaceID)
		_ = msg.Ack()
		return
	}

	tool, ok := runner.ToolByID(in.ToolID)
	if !ok {
		te.reject(ctx, in, fmt.Sprintf("unknown tool: %s", in.ToolID))
		_ = msg.Ack()
		return
	}

	runID := xid.New().String()
	runCtx, cancel := context.WithCancel(context.Background())
	handle := &runHandle{runID: runID, cancel: cancel}

	if prev, loaded := te.inflight.LoadOrStore(in.SurfaceID, handle); loaded {
		cancel()
		te.reject(ctx, in, fmt.Sprintf("run %s already in flight", prev.(*runHandle).runID))
		_ = msg.Ack()
		return
	}

	// Running is recorded and published before the process is dispatched, so
	// no observer can see output ahead of the Running transition.
	started := messages.NewRunStartedEvent(in.SurfaceID, runID, tool.ID).WithCorrelation(in.CorrelationID)
	te.writeSnapshot(ctx, in.SurfaceID, surface.SnapshotFromStarted(*started))
	if err := te.publisher.PublishEvent(ctx, started); err != nil {
		slog.Error("tool: publish started", "run", runID, "err", err)
		te.releaseRun(in.SurfaceID, handle)
		_ = msg.Nak()
		return
	}

	slog.Info("run accepted", "surface", in.SurfaceID, "run", runID, "tool", tool.ID)
	go te.execute(ctx, runCtx, in, tool, runID, handle)
	_ = msg.Ack()
}

// execute runs the process and finishes the lifecycle. It owns the only
// writes that may follow the started event for this run id.
func (te *ToolEngine) execute(ctx, runCtx context.Context, in messages.ToolRunCommand, tool runner.Tool, runID string, handle *runHandle) {
	t0 := time.Now()
	res := te.launcher.RunTool(runCtx, tool)
	elapsed := time.Since(t0)

	evt, snap := terminalEventFor(in, runID, res)
	if err := te.publisher.PublishEvent(ctx, evt); err != nil {
		slog.Error("tool: publish terminal event", "run", runID, "err", err)
	}

	te.writeSnapshot(ctx, in.SurfaceID, snap)
	metrics.ObserveToolRun(tool.ID, res.Status.String(), elapsed.Seconds())

	// Release only after the terminal snapshot landed: the slot keeps a
	// single writer for the whole lifecycle.
	te.releaseRun(in.SurfaceID, handle)
	handle.cancel()

	slog.Info("run finished",
		"surface", in.SurfaceID, "run", runID, "tool", tool.ID,
		"status", res.Status.String(), "duration", elapsed)
}

// terminalEventFor picks the single terminal event for a finished result:
// an exit event when the process terminated on its own, an error event when
// it never launched. The snapshot is derived from the event, so the stored
// slot always agrees with what event consumers saw.
func terminalEventFor(in messages.ToolRunCommand, runID string, res runner.Result) (messages.Event, surface.RunSnapshot) {
	if res.Launched() {
		evt := messages.NewRunExitEvent(in.SurfaceID, runID, in.ToolID, *res.ExitCode, res.Text).
			WithTruncated(res.Truncated).
			WithCorrelation(in.CorrelationID)
		return evt, surface.SnapshotFromExit(*evt)
	}
	evt := messages.NewRunErrorEvent(in.SurfaceID, runID, in.ToolID, res.Text).
		WithCorrelation(in.CorrelationID)
	return evt, surface.SnapshotFromError(*evt)
}

func (te *ToolEngine) reject(ctx context.Context, in messages.ToolRunCommand, reason string) {
	evt := messages.NewRunRejectedEvent(in.SurfaceID, in.ToolID, reason).WithCorrelation(in.CorrelationID)
	if err := te.publisher.PublishEvent(ctx, evt); err != nil {
		slog.Warn("tool: publish rejected", "surface", in.SurfaceID, "err", err)
	}
	metrics.CountRejected(in.ToolID)
	slog.Info("run rejected", "surface", in.SurfaceID, "tool", in.ToolID, "reason", reason)
}

// InFlight reports the run currently holding a surface's guard slot.
func (te *ToolEngine) InFlight(surfaceID string) (string, bool) {
	v, ok := te.inflight.Load(surfaceID)
	if !ok {
		return "", false
	}
	return v.(*runHandle).runID, true
}

// releaseRun frees the guard slot iff it is still held by this handle.
func (te *ToolEngine) releaseRun(surfaceID string, handle *runHandle) {
	te.inflight.CompareAndDelete(surfaceID, handle)
}

// writeSnapshot updates the surface's run slot in KV under revision checks
// so a concurrent console write cannot clobber a lifecycle transition.
func (te *ToolEngine) writeSnapshot(ctx context.Context, surfaceID string, snap surface.RunSnapshot) {
	kv, err := te.js.KeyValue(ctx, surface.Bucket)
	if err != nil {
		slog.Warn("tool: surfaces bucket", "err", err)
		return
	}
	_, err = surface.UpdateState(ctx, kv, surfaceID, func(st *surface.State) error {
		st.Run = &snap
		return nil
	})
	if err != nil {
		slog.Warn("tool: write run snapshot", "surface", surfaceID, "run", snap.RunID, "err", err)
	}
}

// stopAllRuns cancels any executing tools when the engine shuts down.
func (te *ToolEngine) stopAllRuns() {
	count := 0
	te.inflight.Range(func(key, value any) bool {
		value.(*runHandle).cancel()
		te.inflight.Delete(key)
		count++
		return true
	})
	if count > 0 {
		slog.Info("all runs stopped", "count", count)
	}
}
