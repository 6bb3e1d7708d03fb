package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"hellorun/internal/runner"
	"hellorun/internal/surface"

	"github.com/a-h/templ"
)

// SurfaceView renders the container the KV watcher keeps in sync. The
// fragment carries id="surface-view" so morph merges replace it in place.
func SurfaceView(st surface.State, tools []runner.Tool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="surface-view" class="view view-%s">`, st.View); err != nil {
			return err
		}
		if err := ViewNav(st.View).Render(ctx, w); err != nil {
			return err
		}
		var inner templ.Component
		if st.View == surface.ViewTools {
			inner = ToolsView(st, tools)
		} else {
			inner = HelloView()
		}
		if err := inner.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// ViewNav switches between the surface views. Posting the command and
// letting the KV watcher re-render keeps this a pure function of state.
func ViewNav(active string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="view-nav">`); err != nil {
			return err
		}
		for _, v := range []string{surface.ViewHello, surface.ViewTools} {
			class := "view-tab"
			if v == active {
				class += " view-tab-active"
			}
			if _, err := fmt.Fprintf(w,
				`<button class="%s" data-on-click="@post('/surface/view/%s')">%s</button>`,
				class, v, v); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}

// HelloView is the default greeting view.
func HelloView() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="hello-card">`+
			`<div class="hello-big">Hello, World!</div>`+
			`<p class="hello-hint">This surface is live. Type <code>view tools</code> in the console below to get a runnable tool catalog, or <code>help</code> to see what else it understands.</p>`+
			`</div>`)
		return err
	})
}

// ToolsView shows the fixed tool catalog and the current run result. Buttons
// are disabled while a run is in flight; the engine still rejects should a
// click race the re-render.
func ToolsView(st surface.State, tools []runner.Tool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		snap := st.RunOrIdle()
		if _, err := io.WriteString(w, `<div id="tool-buttons" class="tool-buttons">`); err != nil {
			return err
		}
		for _, t := range tools {
			if err := ToolButton(t, snap.InFlight()).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		return RunResult(snap).Render(ctx, w)
	})
}

// ToolButton triggers one catalog entry. The argv line is display only; the
// server resolves the tool id back to its fixed path and args.
func ToolButton(t runner.Tool, disabled bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		attr := ""
		if disabled {
			attr = " disabled"
		}
		_, err := fmt.Fprintf(w,
			`<button class="tool-btn" data-on-click="@post('/tool/%s/run')"%s>`+
				`<span class="tool-label">%s</span>`+
				`<code class="tool-argv">%s</code>`+
				`</button>`,
			templ.EscapeString(t.ID), attr,
			templ.EscapeString(t.Label),
			templ.EscapeString(strings.Join(t.Argv(), " ")))
		return err
	})
}

// RunResult renders the result slot: idle placeholder, running banner, or
// the terminal outcome with its combined output.
func RunResult(snap surface.RunSnapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		status := snap.Status.String()
		if _, err := fmt.Fprintf(w, `<div id="run-result" class="result result-%s">`, status); err != nil {
			return err
		}

		head := fmt.Sprintf(`<div class="result-head"><span class="status-dot"></span><span class="result-status">%s</span>`, status)
		if snap.ToolID != "" {
			head += fmt.Sprintf(`<span class="result-tool">%s</span>`, templ.EscapeString(snap.ToolID))
		}
		if snap.ExitCode != nil {
			head += fmt.Sprintf(`<span class="result-exit">exit code %d</span>`, *snap.ExitCode)
		}
		if snap.Truncated {
			head += `<span class="result-trunc">output truncated</span>`
		}
		head += `</div>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}

		var body string
		switch {
		case snap.InFlight():
			body = fmt.Sprintf(`<div class="result-running">running %s&hellip;</div>`, templ.EscapeString(snap.ToolID))
		case snap.Text != "":
			body = fmt.Sprintf(`<pre class="result-text">%s</pre>`, templ.EscapeString(snap.Text))
		default:
			body = `<div class="result-idle">press a button to run a tool</div>`
		}
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// ActivityLine is one appended row in the run activity log.
func ActivityLine(text string, isErr bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "activity-line"
		if isErr {
			class += " activity-err"
		}
		_, err := fmt.Fprintf(w, `<div class="%s">%s</div>`, class, templ.EscapeString(text))
		return err
	})
}
