package components

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/a-h/templ"
)

// docFS roots document reads at the working directory. fs paths reject
// ".." and absolute paths, so a viewdoc event cannot reach outside it.
var docFS fs.FS = os.DirFS(".")

// ConsoleFrozenLine is one echoed command with its output, appended to the
// frozen scrollback.
func ConsoleFrozenLine(line, output string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="console-line"><div class="console-cmd"><span class="prompt-char">&gt;</span> %s</div><pre class="console-output">%s</pre></div>`,
			templ.EscapeString(line), templ.EscapeString(output))
		return err
	})
}

// ConsolePrompt is the live input. The freeze renderer swaps in a fresh one
// after every command, which also clears the field.
func ConsolePrompt() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<div id="live-prompt" class="console-prompt">`+
				`<form data-on-submit="@post('/console', {contentType: 'form'})">`+
				`<span class="prompt-char">&gt;</span>`+
				`<input type="text" name="line" placeholder="help" autocomplete="off" autofocus/>`+
				`</form>`+
				`</div>`)
		return err
	})
}

// DocMarkdown renders the requested files as HTML inside the doc panel.
func DocMarkdown(paths []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section id="doc-view" class="doc-view">`); err != nil {
			return err
		}
		for _, p := range paths {
			if _, err := fmt.Fprintf(w, `<article class="doc-file"><h3 class="doc-path">%s</h3>`, templ.EscapeString(p)); err != nil {
				return err
			}
			if err := FileToHTML(p, "", docFS).Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</article>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}
