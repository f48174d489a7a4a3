package api

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// SPA serves files from dist. Paths without a file extension that match
// no file get index.html so client-side routes resolve; missing assets 404.
func SPA(dist fs.FS) http.Handler {
	files := http.FileServerFS(dist)
	index, indexErr := fs.ReadFile(dist, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if st, err := fs.Stat(dist, name); err == nil && !st.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if path.Ext(name) != "" || indexErr != nil {
			notFound(w)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(index)
	})
}
