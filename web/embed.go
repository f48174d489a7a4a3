package web

import (
	"embed"
	"io/fs"
)

//go:embed dist
var assets embed.FS

// Dist returns the built admin panel, rooted at its index.html.
func Dist() fs.FS {
	sub, err := fs.Sub(assets, "dist")
	if err != nil {
		// dist is embedded at build time; Sub only fails on an invalid name.
		panic(err)
	}
	return sub
}
