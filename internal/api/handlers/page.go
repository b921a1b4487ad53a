package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/promptforge/internal/api/web"
)

const pageTemplate = "generate_prompt.html"

// PageHandler serves the prompt form at GET /.
type PageHandler struct {
	tmpl   *template.Template
	data   web.PageData
	logger *slog.Logger
}

// NewPageHandler parses the embedded templates once.
func NewPageHandler(data web.PageData, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{tmpl: tmpl, data: data, logger: logger}, nil
}

// Index renders the form page.
func (h *PageHandler) Index(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, pageTemplate, h.data); err != nil {
		h.logger.Error("page: render failed", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	return http.FileServer(http.FS(web.Static()))
}
