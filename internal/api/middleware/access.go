// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Outcome classifies a finished request by status code.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeInvalid Outcome = "invalid"
	OutcomeError   Outcome = "error"
)

// AccessLog logs one structured line per request: action, method, path,
// status, duration and the chi request id.
// Expected order in router: RequestID -> AccessLog -> handlers.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			outcome := outcomeFromStatus(recorder.statusCode)
			level := slog.LevelInfo
			if outcome == OutcomeError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("action", actionFromRequest(r.Method, r.URL.Path)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", recorder.statusCode),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("outcome", string(outcome)),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func outcomeFromStatus(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 400:
		return OutcomeSuccess
	case statusCode >= 400 && statusCode < 500:
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// actionFromRequest names the operation behind method and path,
// e.g. "generate_short" for POST /generate-short.
func actionFromRequest(method, path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		if method == http.MethodGet {
			return "index"
		}
		return strings.ToLower(method) + "_request"
	}

	if action, ok := knownActions[trimmed]; ok {
		return action
	}
	first, _, _ := strings.Cut(trimmed, "/")
	if first == "static" {
		return "static"
	}
	return strings.ToLower(method) + "_request"
}

var knownActions = map[string]string{
	"generate":       "generate",
	"generate-short": "generate_short",
	"api/chat":       "chat",
	"health":         "health",
	"metrics":        "metrics",
}
