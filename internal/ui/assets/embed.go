// Package assets embeds the static files served under /static by the status
// pages.
package assets

import "embed"

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static file tree.
func StaticFS() embed.FS {
	return staticFS
}
