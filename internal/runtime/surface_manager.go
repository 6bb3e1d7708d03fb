package runtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"hellorun/internal/messages"
	"hellorun/internal/surface"

	"github.com/nats-io/nats.go/jetstream"
)

// SurfaceManager consumes command.surface.* subjects to mutate surface state
// stored in the "surfaces" KV bucket. All validation is centralised here.
type SurfaceManager struct {
	js jetstream.JetStream
}

func NewSurfaceManager(js jetstream.JetStream) *SurfaceManager {
	return &SurfaceManager{js: js}
}

// Start registers a durable consumer on the COMMAND stream filtered to
// command.surface.> subjects and handles messages until ctx is cancelled.
func (sm *SurfaceManager) Start(ctx context.Context) error {
	cons, err := sm.js.CreateOrUpdateConsumer(ctx, "COMMAND", jetstream.ConsumerConfig{
		Durable:        "SURFACE_CMD",
		FilterSubjects: []string{messages.SurfaceCommandPattern},
		AckPolicy:      jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return err
	}

	_, err = cons.Consume(func(m jetstream.Msg) {
		switch m.Subject() {
		case messages.SurfaceViewSetSubject:
			sm.applyViewSet(ctx, m)
		case messages.SurfacePatchSubject:
			sm.applyPatch(ctx, m)
		default:
			_ = m.Term() // unknown
		}
	})
	return err
}

func (sm *SurfaceManager) applyViewSet(ctx context.Context, msg jetstream.Msg) {
	var c messages.SurfaceViewCommand
	if json.Unmarshal(msg.Data(), &c) != nil {
		_ = msg.Term()
		return
	}
	if c.SurfaceID == "" || !surface.ValidView(c.View) {
		_ = msg.Term()
		return
	}

	kv, err := sm.js.KeyValue(ctx, surface.Bucket)
	if err != nil {
		_ = msg.Nak()
		return
	}
	if _, err := surface.UpdateState(ctx, kv, c.SurfaceID, func(st *surface.State) error {
		st.View = c.View
		return nil
	}); err != nil {
		slog.Warn("surface: view.set failed", "surface", c.SurfaceID, "err", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

func (sm *SurfaceManager) applyPatch(ctx context.Context, msg jetstream.Msg) {
	var c messages.SurfacePatchCommand
	if json.Unmarshal(msg.Data(), &c) != nil {
		_ = msg.Term()
		return
	}
	if c.SurfaceID == "" {
		_ = msg.Term()
		return
	}

	kv, err := sm.js.KeyValue(ctx, surface.Bucket)
	if err != nil {
		_ = msg.Nak()
		return
	}

	var patchErr error
	_, err = surface.UpdateState(ctx, kv, c.SurfaceID, func(st *surface.State) error {
		cur, err := st.Encode()
		if err != nil {
			return err
		}
		patched, perr := surface.ApplyPatch(cur, c.Patch, c.Type)
		if perr != nil {
			patchErr = perr
			return perr
		}
		next, err := surface.LoadData(patched)
		if err != nil {
			patchErr = err
			return err
		}
		// The run slot has a single writer (the tool engine); a patch
		// cannot replace or clear it.
		next.Run = st.Run
		*st = next
		return nil
	})
	switch {
	case err == nil:
		_ = msg.Ack()
	case patchErr != nil:
		// Bad patches stay bad on redelivery.
		slog.Warn("surface: patch rejected", "surface", c.SurfaceID, "err", patchErr)
		_ = msg.Term()
	default:
		slog.Warn("surface: patch failed", "surface", c.SurfaceID, "err", err)
		_ = msg.Nak()
	}
}
