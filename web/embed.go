// Package web embeds the single-page UI served by the API server.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/stockpulse/web"
//	fs := web.StaticFS() // io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
// It is ready to use with http.FileServerFS.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic("web: " + err.Error())
	}
	return sub
}
