// Package site serves the embedded map page.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the page and its assets to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	for _, path := range []string{"/", "/app.js", "/style.css"} {
		r.Get(path, files.ServeHTTP)
	}
}
