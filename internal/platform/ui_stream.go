package platform

import (
	"context"
	"log/slog"
	"net/http"

	"hellorun/internal/runner"
	"hellorun/internal/runtime"
	"hellorun/internal/surface"
	"hellorun/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// UIStream is the SSE handler for /ui. One stream serves one surface. The
// KV watcher keeps the surface container in sync with stored state; the
// event consumer appends run and console activity as it happens. A
// surface's subjects are fixed, so one consumer lives for the whole stream.
func UIStream(js jetstream.JetStream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := SurfaceID(r)
		if sid == "" {
			http.Error(w, "missing surface id", http.StatusBadRequest)
			return
		}
		sse := datastar.NewSSE(w, r)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		kv, err := js.KeyValue(ctx, surface.Bucket)
		if err != nil {
			slog.Error("ui: surfaces bucket", "err", err)
			return
		}

		// Make sure the doc exists so the watcher has an initial value to
		// replay. A no-op mutation creates the default state on first visit.
		if _, err := surface.UpdateState(ctx, kv, sid, func(*surface.State) error { return nil }); err != nil {
			slog.Error("ui: ensure surface doc", "sid", sid, "err", err)
			return
		}

		subs := surface.Subscriptions(sid)
		renderers := runtime.ForSubjects(subs)

		// Ephemeral consumer; DeliverAll replays the surface's event history
		// so a refreshed page rebuilds its activity log.
		cons, err := js.CreateConsumer(ctx, "EVENT", jetstream.ConsumerConfig{
			AckPolicy:      jetstream.AckNonePolicy,
			FilterSubjects: subs,
			DeliverPolicy:  jetstream.DeliverAllPolicy,
		})
		if err != nil {
			slog.Error("ui: create event consumer", "sid", sid, "err", err)
			return
		}

		consume, err := cons.Consume(func(msg jetstream.Msg) {
			for _, ren := range renderers {
				if ren.MatchFunc(msg.Subject()) {
					if err := ren.RenderFunc(ctx, msg, sse); err != nil {
						slog.Warn("ui: render", "subj", msg.Subject(), "err", err)
					}
					break
				}
			}
		})
		if err != nil {
			slog.Error("ui: consume events", "sid", sid, "err", err)
			return
		}
		defer consume.Stop()

		watcher, err := kv.Watch(ctx, sid)
		if err != nil {
			slog.Error("ui: watch surface doc", "sid", sid, "err", err)
			return
		}
		defer func() { _ = watcher.Stop() }()

		go func() {
			for update := range watcher.Updates() {
				if update == nil {
					// Marks the end of the initial replay.
					continue
				}
				if update.Operation() == jetstream.KeyValueDelete {
					cancel()
					return
				}
				st, err := surface.LoadData(update.Value())
				if err != nil {
					slog.Warn("ui: surface doc", "sid", sid, "err", err)
					continue
				}
				comp := components.SurfaceView(st, runner.Catalog)
				if err := sse.MergeFragmentTempl(comp, datastar.WithSelectorID("surface-view")); err != nil {
					slog.Warn("ui: merge surface view", "sid", sid, "err", err)
				}
			}
		}()

		<-ctx.Done() // Wait for disconnect
	}
}
