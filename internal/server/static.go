package server

import (
	"net/http"
	"path/filepath"
	"strings"
)

// staticHandler serves the web app assets. Unknown paths fall back to the
// app shell so client-side routes resolve after a full page load.
func staticHandler(dir string) http.Handler {
	root := http.Dir(dir)
	fileServer := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}

		if f, err := root.Open(name); err == nil {
			_ = f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
