package platform

import (
	"context"
	"log/slog"
	"time"

	"hellorun/internal/runner"
	"hellorun/internal/runtime"
	"hellorun/internal/surface"

	"github.com/nats-io/nats.go/jetstream"
)

// Run provisions the JetStream resources and starts the engines, then blocks
// until ctx is cancelled. Streams are created before any engine starts so
// the durable consumers always find their stream.
func Run(ctx context.Context, js jetstream.JetStream, launcher *runner.Launcher) {
	// COMMAND is a work queue: each command is consumed exactly once. The
	// tool and surface consumers coexist because their filters do not
	// overlap.
	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      "COMMAND",
		Subjects:  []string{"command.>"},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		slog.Warn("Error adding COMMAND stream", "err", err)
	}

	// Events age out after a day; run history is a live feed, not a record.
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     "EVENT",
		Subjects: []string{"event.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		slog.Warn("Error adding EVENT stream", "err", err)
	}

	_, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  surface.Bucket,
		History: 5,
		Storage: jetstream.FileStorage,
	})
	if err != nil {
		slog.Warn("Error creating surfaces KV bucket", "err", err)
	}

	te := runtime.NewToolEngine(js, launcher)
	go func() {
		if err := te.Start(ctx); err != nil {
			slog.Error("ToolEngine error", "err", err)
		} else {
			slog.Info("ToolEngine started")
		}
	}()

	ce := runtime.NewConsoleEngine(js)
	go func() {
		if err := ce.Start(ctx); err != nil {
			slog.Error("ConsoleEngine error", "err", err)
		} else {
			slog.Info("ConsoleEngine started")
		}
	}()

	sm := runtime.NewSurfaceManager(js)
	go func() {
		if err := sm.Start(ctx); err != nil {
			slog.Error("SurfaceManager error", "err", err)
		} else {
			slog.Info("SurfaceManager started")
		}
	}()

	slog.Info("🚀 JetStream in-process system is up. You can now use NATS CLI to interact with it.")
	<-ctx.Done()
	slog.Info("Run: shutdown requested")
}
