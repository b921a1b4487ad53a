package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/promptforge/internal/domain/promptgen"
)

// Validation replies. Both are sent with status 200 inside {"error": ...}.
const (
	msgMissingTask     = "Please provide a 'task'"
	msgMissingProvider = "Please select a 'provider'"

	msgUnexpectedPrompt = "❌ Error: unexpected error"
	msgUnexpectedShort  = "unexpected error"
)

// PromptGenerator is the domain side of the generate endpoints.
type PromptGenerator interface {
	Generate(ctx context.Context, req promptgen.Request) (string, error)
}

// GenerationRecorder counts generation results. metrics.PrometheusRecorder satisfies it.
type GenerationRecorder interface {
	ObserveGeneration(mode, result string)
}

// GenerateHandler serves POST /generate and POST /generate-short.
type GenerateHandler struct {
	generator PromptGenerator
	recorder  GenerationRecorder
	logger    *slog.Logger
}

// NewGenerateHandler returns a handler over g. rec and logger may be nil.
func NewGenerateHandler(g PromptGenerator, rec GenerationRecorder, logger *slog.Logger) *GenerateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateHandler{generator: g, recorder: rec, logger: logger}
}

// GenerateRequest is the body of both generate endpoints. Fields are read
// independently, so a mistyped provider does not hide a valid task.
type GenerateRequest struct {
	Task     string `json:"task"`
	Provider string `json:"provider"`
}

// PromptResponse carries the generated prompt, or a user-facing failure string.
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// Generate handles POST /generate (full mode).
// Unexpected failures are still a 200 with a failure-marked prompt.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, promptgen.ModeFull)
}

// GenerateShort handles POST /generate-short (100-token mode).
// Unexpected failures are a 500 {"error": "unexpected error"}.
func (h *GenerateHandler) GenerateShort(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, promptgen.ModeShort)
}

func (h *GenerateHandler) serve(w http.ResponseWriter, r *http.Request, mode promptgen.Mode) {
	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		// An unreadable body is validated like an empty one.
		h.logger.Debug("generate: undecodable body", "error", err)
		body = nil
	}
	req := GenerateRequest{Task: fieldText(body, "task"), Provider: fieldText(body, "provider")}

	prompt, err := h.generator.Generate(r.Context(), promptgen.Request{Task: req.Task, Provider: req.Provider, Mode: mode})
	switch {
	case errors.Is(err, promptgen.ErrMissingTask):
		h.observe(mode, "invalid")
		writeError(w, http.StatusOK, msgMissingTask)
	case errors.Is(err, promptgen.ErrMissingProvider):
		h.observe(mode, "invalid")
		writeError(w, http.StatusOK, msgMissingProvider)
	case err != nil:
		h.observe(mode, "error")
		h.logger.Error("generate: unexpected failure", "mode", string(mode), "provider", req.Provider, "error", err)
		if mode == promptgen.ModeShort {
			writeError(w, http.StatusInternalServerError, msgUnexpectedShort)
			return
		}
		writeJSON(w, http.StatusOK, PromptResponse{Prompt: msgUnexpectedPrompt})
	default:
		h.observe(mode, "ok")
		writeJSON(w, http.StatusOK, PromptResponse{Prompt: prompt})
	}
}

func (h *GenerateHandler) observe(mode promptgen.Mode, result string) {
	if h.recorder != nil {
		h.recorder.ObserveGeneration(string(mode), result)
	}
}

// fieldText returns body[key] as text. Absent, null, false, zero and empty
// values read as "" and so fail validation; other scalars are formatted.
func fieldText(body map[string]any, key string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	case []any:
		if len(v) == 0 {
			return ""
		}
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}
	return fmt.Sprint(body[key])
}
