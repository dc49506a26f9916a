// Package site handles the root route of the dashboard process.
package site

import (
	"context"
	"net/http"
)

// Register attaches the root route to mux. The dashboard page is the only
// user-facing surface, so the root redirects there.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
}
