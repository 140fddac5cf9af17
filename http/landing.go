package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/home.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html"))

type homePage struct {
	DocsURL string
}

// hostURL rebuilds the externally visible base URL, honoring X-Forwarded-Proto.
func hostURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, homePage{DocsURL: hostURL(r) + "api/"}); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
