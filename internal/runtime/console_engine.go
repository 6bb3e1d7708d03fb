package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"hellorun/internal/messages"
	"hellorun/internal/metrics"
	"hellorun/internal/surface"

	"github.com/nats-io/nats.go/jetstream"
)

// ConsoleEngine interprets console.surface.*.command messages.
// It publishes terse feedback events to event.console.<surface>.freeze.
// Side-effecting commands (run, view) are forwarded to the COMMAND stream
// subjects; the console never writes surface state itself.
type ConsoleEngine struct {
	js        jetstream.JetStream
	publisher *messages.Publisher
	commands  map[string]ConsoleCommand
}

func NewConsoleEngine(js jetstream.JetStream) *ConsoleEngine {
	e := &ConsoleEngine{
		js:        js,
		publisher: messages.NewPublisher(js),
		commands:  map[string]ConsoleCommand{},
	}
	for _, cmd := range []ConsoleCommand{
		&EchoCommand{engine: e},
		&LSCommand{engine: e},
		&RunCommand{engine: e},
		&ViewCommand{engine: e},
		&StatusCommand{engine: e},
		&SchemaCommand{engine: e},
	} {
		e.commands[cmd.Name()] = cmd
	}
	return e
}

// Start creates a consumer on CONSOLE_CMD and returns once it is consuming.
func (e *ConsoleEngine) Start(ctx context.Context) error {
	// Ensure stream exists
	if _, err := e.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     "CONSOLE",
		Subjects: []string{messages.ConsoleCommandSubjectPattern},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		// if already exists ignore
		if !strings.Contains(err.Error(), "stream name already in use") {
			return fmt.Errorf("create CONSOLE stream: %w", err)
		}
	}

	cons, err := e.js.CreateOrUpdateConsumer(ctx, "CONSOLE", jetstream.ConsumerConfig{
		Durable:        "CONSOLE_CMD",
		AckPolicy:      jetstream.AckExplicitPolicy,
		FilterSubjects: []string{messages.ConsoleCommandSubjectPattern},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	if _, err := cons.Consume(func(msg jetstream.Msg) {
		e.handleCommand(ctx, msg)
	}); err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return nil
}

// SurfaceIDFromConsoleSubject extracts the surface id from a
// console.surface.<id>.command subject, or returns "" for any other shape.
func SurfaceIDFromConsoleSubject(subj string) string {
	parts := strings.Split(subj, ".")
	if len(parts) != 4 || parts[0] != "console" || parts[1] != "surface" || parts[3] != "command" {
		return ""
	}
	return parts[2]
}

// helpText returns contextual help for a command. Empty cmd returns the
// general help overview built from the registry.
func (e *ConsoleEngine) helpText(cmd string) string {
	switch cmd {
	case "", "general", "help":
		names := make([]string, 0, len(e.commands))
		for name := range e.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, 0, len(names)+2)
		lines = append(lines, "help [command]         Show this help")
		for _, name := range names {
			lines = append(lines, e.commands[name].Help())
		}
		return "commands:\n  " + strings.Join(lines, "\n  ")
	default:
		if c, ok := e.commands[cmd]; ok {
			return c.Help()
		}
		return fmt.Sprintf("no help available for %s", cmd)
	}
}

func (e *ConsoleEngine) handleCommand(ctx context.Context, msg jetstream.Msg) {
	var in messages.ConsoleCommandMessage
	if err := json.Unmarshal(msg.Data(), &in); err != nil {
		slog.Warn("console: bad cmd payload", "err", err)
		_ = msg.Ack()
		return
	}

	// The subject carries the surface id; the payload never does.
	sid := SurfaceIDFromConsoleSubject(msg.Subject())
	if sid == "" {
		slog.Warn("console: bad subject", "subject", msg.Subject())
		_ = msg.Ack()
		return
	}

	parts := strings.Fields(in.Line)
	if len(parts) == 0 {
		e.sendFreeze(ctx, sid, in.Line, "type \"help\" for commands", msg)
		return
	}

	// --- help handling ---------------------------------------------------
	if parts[0] == "help" {
		topic := ""
		if len(parts) > 1 {
			topic = parts[1]
		}
		e.sendFreeze(ctx, sid, in.Line, e.helpText(topic), msg)
		return
	}
	// trailing -h / --help form
	if last := parts[len(parts)-1]; last == "-h" || last == "--help" {
		e.sendFreeze(ctx, sid, in.Line, e.helpText(parts[0]), msg)
		return
	}

	cmd, ok := e.commands[parts[0]]
	if !ok {
		e.sendFreeze(ctx, sid, in.Line, fmt.Sprintf("unknown command %q (try \"help\")", parts[0]), msg)
		return
	}
	metrics.CountConsoleCommand(parts[0])

	res := cmd.Execute(ctx, sid, e.loadState(ctx, sid), parts)
	e.sendFreeze(ctx, sid, in.Line, res.Output, msg)
}

// loadState reads the surface's current state for commands to consult.
// Missing or invalid state degrades to the default so the console keeps
// answering.
func (e *ConsoleEngine) loadState(ctx context.Context, surfaceID string) surface.State {
	kv, err := e.js.KeyValue(ctx, surface.Bucket)
	if err != nil {
		return surface.State{View: surface.DefaultView}
	}
	var raw []byte
	entry, err := kv.Get(ctx, surfaceID)
	switch {
	case err == nil:
		raw = entry.Value()
	case errors.Is(err, jetstream.ErrKeyNotFound):
	default:
		slog.Warn("console: read surface state", "surface", surfaceID, "err", err)
	}
	st, err := surface.LoadData(raw)
	if err != nil {
		return surface.State{View: surface.DefaultView}
	}
	return st
}

// sendFreeze publishes the freeze event and acks/naks appropriately.
func (e *ConsoleEngine) sendFreeze(ctx context.Context, sid, originalLine, output string, msg jetstream.Msg) {
	evt := messages.NewConsoleFreezeEvent(sid, originalLine, output)
	if err := e.publisher.PublishEvent(ctx, evt); err != nil {
		slog.Warn("console: publish feedback", "err", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}
