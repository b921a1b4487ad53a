package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/matiasleandrokruk/promptforge/internal/domain/transcript"
)

const msgInvalidLimit = "limit must be a positive integer"

// TranscriptReader lists recorded entries. transcript.Store satisfies it.
type TranscriptReader interface {
	Recent(ctx context.Context, limit int) ([]transcript.Entry, error)
}

// TranscriptHandler serves GET /api/transcript.
type TranscriptHandler struct {
	reader TranscriptReader
	logger *slog.Logger
}

// NewTranscriptHandler returns a handler over reader.
func NewTranscriptHandler(reader TranscriptReader, logger *slog.Logger) *TranscriptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptHandler{reader: reader, logger: logger}
}

// TranscriptResponse lists entries newest first.
type TranscriptResponse struct {
	Entries []transcript.Entry `json:"entries"`
}

// Recent handles GET /api/transcript?limit=N. Without limit the store default applies.
func (h *TranscriptHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		limit = n
	}

	entries, err := h.reader.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("transcript: read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read transcript")
		return
	}
	if entries == nil {
		entries = []transcript.Entry{}
	}
	writeJSON(w, http.StatusOK, TranscriptResponse{Entries: entries})
}
