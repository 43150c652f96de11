// Package web holds the server-rendered pages and the static assets they load.
package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js/images) under static/.
//
//go:embed static
var StaticFS embed.FS
