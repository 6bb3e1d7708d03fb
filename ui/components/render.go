package components

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	hl "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// htmlCache memoizes converted files per path. Docs are read from disk once
// per process; the console re-requests them on every `view` command.
var htmlCache sync.Map // map[string]string

var docMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		hl.NewHighlighting(hl.WithStyle("github")),
	),
)

// FileToHTML converts a Markdown or source file inside fsys to embeddable
// HTML. lang overrides extension-based language detection ("go", "js", ...);
// leave it empty to detect. Read failures render an inline error block
// instead of failing the surrounding fragment.
func FileToHTML(path string, lang string, fsys fs.FS) templ.Component {
	if v, ok := htmlCache.Load(path); ok {
		return templ.Raw(v.(string))
	}

	src, err := fs.ReadFile(fsys, path)
	if err != nil {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, werr := io.WriteString(w, `<pre class="doc-error">`+templ.EscapeString(err.Error())+`</pre>`)
			return werr
		})
	}

	html := docToHTML(src, langFor(path, lang))
	htmlCache.Store(path, html)
	return templ.Raw(html)
}

func langFor(path, override string) string {
	if override != "" {
		return override
	}
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// docToHTML runs the source through goldmark. Non-markdown sources are
// wrapped in a fenced code block so chroma highlights them.
func docToHTML(src []byte, lang string) string {
	if lang != "" && lang != "md" && lang != "markdown" {
		fenced := make([]byte, 0, len(src)+len(lang)+8)
		fenced = append(fenced, "```"...)
		fenced = append(fenced, lang...)
		fenced = append(fenced, '\n')
		fenced = append(fenced, src...)
		fenced = append(fenced, "\n```"...)
		src = fenced
	}

	var buf bytes.Buffer
	if err := docMarkdown.Convert(src, &buf); err != nil {
		return `<pre class="doc-error">` + templ.EscapeString(err.Error()) + `</pre>`
	}
	return buf.String()
}
