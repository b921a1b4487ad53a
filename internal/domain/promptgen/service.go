// Package promptgen turns a short task description into an optimized prompt
// by templating an instruction, dispatching it to the chosen provider and
// normalizing the reply.
package promptgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matiasleandrokruk/promptforge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/promptforge/internal/infra/llm"
	"github.com/matiasleandrokruk/promptforge/internal/infra/tokens"
)

var (
	// ErrMissingTask is returned before any upstream call when the task is blank.
	ErrMissingTask = errors.New("promptgen: task is required")
	// ErrMissingProvider is returned when no provider is selected.
	ErrMissingProvider = errors.New("promptgen: provider is required")
	// ErrUnexpected wraps any failure that has no user-facing message.
	ErrUnexpected = errors.New("promptgen: unexpected error")
)

// User-facing failure strings. Returned as the prompt text, never as errors.
const (
	msgUnknownProvider   = "❌ Unknown provider: %s"
	msgUpstreamStatus    = "❌ Error: the AI service returned status %d"
	msgUpstreamDown      = "❌ Error: the AI service could not be reached"
	msgMissingCredential = "❌ Error: TOGETHER_API_KEY is not configured"
	msgMalformed         = "❌ Error: the AI service returned an unreadable response"
)

// Dispatcher is the upstream side of the generator. llm.Dispatcher satisfies it.
type Dispatcher interface {
	Resolve(provider string) (llm.Profile, error)
	Dispatch(ctx context.Context, call llm.Call) (llm.UpstreamResponse, error)
}

// Request is one generation request.
type Request struct {
	Task     string
	Provider string
	Mode     Mode
}

// Generated is published on eventbus.TopicPromptGenerated after every
// request that reached the dispatcher.
type Generated struct {
	Provider string
	Mode     Mode
	Task     string
	Prompt   string
	Failed   bool
	Tokens   int
	At       time.Time
}

// Generator wires the template selector, dispatcher and normalizer.
type Generator struct {
	profiles   llm.ProfileTable
	dispatcher Dispatcher
	estimator  tokens.Estimator
	events     eventbus.Publisher
	logger     *slog.Logger
}

// Option configures optional Generator collaborators.
type Option func(*Generator)

// WithEstimator sets the token estimator used to log short-prompt sizes.
func WithEstimator(e tokens.Estimator) Option {
	return func(g *Generator) { g.estimator = e }
}

// WithPublisher publishes a Generated event for each request.
func WithPublisher(p eventbus.Publisher) Option {
	return func(g *Generator) { g.events = p }
}

// WithLogger sets the logger; upstream failures are logged at error level.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator builds a Generator over profiles and d.
func NewGenerator(profiles llm.ProfileTable, d Dispatcher, opts ...Option) *Generator {
	g := &Generator{
		profiles:   profiles,
		dispatcher: d,
		estimator:  tokens.WordEstimator{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the optimized prompt for req.
//
// Validation failures return ErrMissingTask or ErrMissingProvider. Known
// upstream failures (unknown provider, transport, credential, malformed
// payload) come back as a user-safe "❌ ..." string with a nil error. Anything
// else returns an error wrapping ErrUnexpected.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	task := strings.TrimSpace(req.Task)
	if task == "" {
		return "", ErrMissingTask
	}
	if strings.TrimSpace(req.Provider) == "" {
		return "", ErrMissingProvider
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeFull
	}

	profile, err := g.dispatcher.Resolve(req.Provider)
	if err != nil {
		return g.failure(req, mode, err)
	}

	tmpl, err := SelectTemplate(g.profiles, profile.ID, mode)
	if err != nil {
		return g.failure(req, mode, err)
	}
	if mode == ModeFull {
		tmpl = tmpl.WithPersonaHint(task)
	}

	resp, err := g.dispatcher.Dispatch(ctx, llm.Call{
		Provider:  profile.ID,
		System:    tmpl.System,
		User:      tmpl.UserContent(req.Task),
		MaxTokens: tmpl.MaxTokens,
	})
	if err != nil {
		return g.failure(req, mode, err)
	}

	text, err := extract(profile, resp)
	if err != nil {
		return g.failure(req, mode, err)
	}

	n := 0
	if mode == ModeShort {
		n = g.estimator.Estimate(text)
		g.logger.Info("short prompt generated", "provider", profile.ID, "tokens", n, "ceiling", ShortMaxTokens)
	}
	g.publish(Generated{Provider: profile.ID, Mode: mode, Task: req.Task, Prompt: text, Tokens: n})
	return text, nil
}

// extract applies the strict unwrap to raw HTTP payloads and the tolerant
// normalizer to everything else.
func extract(profile llm.Profile, resp llm.UpstreamResponse) (string, error) {
	if profile.Transport == llm.TransportRawHTTP {
		return llm.StrictContent(resp)
	}
	return llm.ExtractText(resp), nil
}

// failure maps err to its user-facing string, or to ErrUnexpected.
func (g *Generator) failure(req Request, mode Mode, err error) (string, error) {
	msg, known := FailureMessage(req.Provider, err)
	if errors.Is(err, llm.ErrUnknownProvider) {
		g.logger.Warn("unknown provider", "provider", req.Provider)
		return msg, nil
	}

	g.logger.Error("prompt generation failed", "provider", req.Provider, "mode", string(mode), "error", err)
	g.publish(Generated{Provider: req.Provider, Mode: mode, Task: req.Task, Prompt: msg, Failed: true})
	if !known {
		return "", fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return msg, nil
}

// FailureMessage renders err as the user-facing prompt text. known is false
// when err has no dedicated message.
func FailureMessage(provider string, err error) (msg string, known bool) {
	switch {
	case errors.Is(err, llm.ErrUnknownProvider):
		return fmt.Sprintf(msgUnknownProvider, strings.ToLower(strings.TrimSpace(provider))), true
	case errors.Is(err, llm.ErrMissingCredential):
		return msgMissingCredential, true
	case errors.Is(err, llm.ErrMalformedResponse):
		return msgMalformed, true
	case llm.IsTransport(err):
		if code := llm.StatusOf(err); code > 0 {
			return fmt.Sprintf(msgUpstreamStatus, code), true
		}
		return msgUpstreamDown, true
	default:
		return "", false
	}
}

func (g *Generator) publish(evt Generated) {
	if g.events == nil {
		return
	}
	evt.At = time.Now().UTC()
	g.events.Publish(eventbus.TopicPromptGenerated, evt)
}
