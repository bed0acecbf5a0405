// Package web bundles the HTML templates and static assets into the binary.
package web

import "embed"

// Templates holds the page and HTMX fragment templates.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds CSS, JS and images served under /static.
//
//go:embed static
var Static embed.FS
