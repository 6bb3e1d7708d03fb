// Package ui holds the page shell and embedded static assets. Everything
// dynamic arrives over the /ui SSE stream: the surface view container is
// re-rendered from the surface document and the log boxes are append-only.
package ui

import (
	"context"
	"embed"
	"io"

	"hellorun/ui/components"

	"github.com/a-h/templ"
)

//go:embed static
var StaticFS embed.FS

// FaviconSVG is served at /favicon.svg.
var FaviconSVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><rect width="16" height="16" rx="3" fill="#10131a"/><path d="M4 5l3 3-3 3" stroke="#7ee787" stroke-width="1.6" fill="none" stroke-linecap="round" stroke-linejoin="round"/><path d="M8.5 11H12" stroke="#7ee787" stroke-width="1.6" stroke-linecap="round"/></svg>`)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v0.21.4/bundles/datastar.js"

// Index is the static page shell. It renders no surface state of its own;
// the SSE stream fills #surface-view from KV as soon as the page connects.
func Index() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>hellorun</title>
<link rel="icon" href="/favicon.svg"/>
<link rel="stylesheet" href="/static/app.css"/>
<script type="module" src="`+datastarCDN+`"></script>
</head>
<body data-on-load="@get('/ui')">
<header class="hero">
<h1>Hello, World!</h1>
<p class="tagline">a tiny tool runner saying hello over server-sent events</p>
</header>
<main>
<div id="surface-view" class="view"></div>
<section class="activity">
<h2>activity</h2>
<div id="run-activity" class="activity-log"></div>
</section>
<section class="console">
<h2>console</h2>
<div id="console-frozen" class="console-frozen"></div>
`); err != nil {
			return err
		}
		if err := components.ConsolePrompt().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>
<section id="doc-view" class="doc-view"></section>
</main>
</body>
</html>
`)
		return err
	})
}
