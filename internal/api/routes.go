package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matiasleandrokruk/promptforge/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/promptforge/internal/api/middleware"
	"github.com/matiasleandrokruk/promptforge/internal/api/web"
)

// Deps holds everything NewRouter mounts. Metrics, Transcript and Logger may be nil.
type Deps struct {
	Generator      handlers.PromptGenerator
	Chat           handlers.MessageRouter
	Recorder       handlers.GenerationRecorder
	Transcript     handlers.TranscriptReader
	Metrics        http.Handler
	Page           web.PageData
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates the chi router with every PromptForge route.
func NewRouter(deps Deps) (*chi.Mux, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	page, err := handlers.NewPageHandler(deps.Page, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Browser front end
	r.Get("/", page.Index)
	r.Handle("/static/*", http.StripPrefix("/static/", handlers.Static()))

	generate := handlers.NewGenerateHandler(deps.Generator, deps.Recorder, logger)
	r.Post("/generate", generate.Generate)            // POST /generate
	r.Post("/generate-short", generate.GenerateShort) // POST /generate-short

	r.Post("/api/chat", handlers.NewChatHandler(deps.Chat).Chat) // POST /api/chat

	if deps.Transcript != nil {
		r.Get("/api/transcript", handlers.NewTranscriptHandler(deps.Transcript, logger).Recent) // GET /api/transcript
	}

	return r, nil
}
