package api

import (
	_ "embed"
	"net/http"
)

//go:embed web/index.html
var indexPage []byte

// ShellHandler serves the browser shell. All state it shows comes from the
// session endpoints.
func ShellHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}
