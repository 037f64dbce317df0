package main

import (
	_ "embed"
	"net/http"
)

//go:embed page.html
var pageHTML []byte

// servePage delivers the embedded canvas client.
func servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(pageHTML)
}

// serveFavicon quiets favicon 404s.
func serveFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
