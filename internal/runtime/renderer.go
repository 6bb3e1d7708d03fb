package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"hellorun/ui/components"

	"github.com/nats-io/nats.go/jetstream"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// RenderFunc turns one event message into SSE patches.
type RenderFunc func(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator) error

// Renderer pairs a subject test with the render function the UI stream
// dispatches matching messages to.
type Renderer struct {
	Pattern    string
	MatchFunc  func(string) bool
	RenderFunc RenderFunc
}

// RendererSpec maps a wildcard pattern to a factory producing the concrete
// Renderer for one subscribed subject. The factory sees the subject, so a
// renderer can precompute anything derived from its tokens.
type RendererSpec struct {
	Pattern string
	Build   func(subj string) Renderer
}

// Specs is populated by renderers.go at init and read-only afterwards.
var Specs []RendererSpec

// ForSubjects materializes renderers for the exact subjects a UI stream
// subscribes to: one per (subject, matching spec) pair, deduplicated, with
// the catch-all appended last so dispatch always finds a handler.
func ForSubjects(subjects []string) []Renderer {
	out := make([]Renderer, 0, len(subjects)+1)
	seen := make(map[string]struct{})
	for _, s := range subjects {
		for _, spec := range Specs {
			if !SubjectMatches(spec.Pattern, s) {
				continue
			}
			key := spec.Pattern + "|" + s
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, spec.Build(s))
		}
	}
	return append(out, fallback)
}

func newRenderer(pattern string, fn RenderFunc) Renderer {
	return Renderer{
		Pattern:    pattern,
		MatchFunc:  func(subj string) bool { return SubjectMatches(pattern, subj) },
		RenderFunc: fn,
	}
}

// newTypedRenderer decodes the payload into T before invoking handler.
// DisallowUnknownFields keeps the renderer structs honest against the wire
// types in internal/messages.
func newTypedRenderer[T any](pattern string, handler func(context.Context, jetstream.Msg, *datastar.ServerSentEventGenerator, T) error) Renderer {
	return newRenderer(pattern, func(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator) error {
		var p T
		dec := json.NewDecoder(bytes.NewReader(msg.Data()))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decode %T: %w", p, err)
		}
		return handler(ctx, msg, sse, p)
	})
}

// fallback appends any unmatched message to the activity log verbatim.
var fallback = newRenderer(">", func(ctx context.Context, msg jetstream.Msg, sse *datastar.ServerSentEventGenerator) error {
	line := fmt.Sprintf("%s %s", msg.Subject(), string(msg.Data()))
	return sse.MergeFragmentTempl(
		components.ActivityLine(line, false),
		datastar.WithSelectorID("run-activity"),
		datastar.WithMergeAppend(),
	)
})
