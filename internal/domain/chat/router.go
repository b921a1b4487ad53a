// Package chat routes free-text chat messages by literal prefix to prompt
// improvement, the search placeholder or a general question-answer call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matiasleandrokruk/promptforge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/promptforge/internal/infra/llm"
)

// Route names a chat behaviour. Also used as a metric label.
type Route string

const (
	RouteImprove Route = "improve"
	RouteSearch  Route = "search"
	RouteAsk     Route = "ask"
	RouteDefault Route = "default"
)

// Prefixes, matched case-insensitively in this order.
const (
	prefixImprove = "improve my prompt:"
	prefixSearch  = "search the internet for"
	prefixAsk     = "ask gpt:"
)

const (
	improveModel = llm.ModelLlama
	askModel     = llm.ModelGPTOSS
	maxTokens    = 1000
)

// Reply texts for failed upstream calls.
const (
	replyStatusError     = "Sorry, I encountered an error with the AI service: %d"
	replyUnexpectedError = "Sorry, I encountered an unexpected error. Please try again later."
)

var errNoContent = errors.New("chat: no content received from AI service")

// Completer sends a fixed-model call upstream. llm.Dispatcher satisfies it.
type Completer interface {
	Complete(ctx context.Context, call llm.CompletionCall) (llm.UpstreamResponse, error)
}

// Searcher answers "search the internet for" messages.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// PlaceholderSearcher is the only Searcher: it performs no search and
// returns a fixed acknowledgement containing the query.
type PlaceholderSearcher struct{}

// Search implements Searcher.
func (PlaceholderSearcher) Search(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("Searching the web for '%s'... Here are the top results I found.", query), nil
}

// RouteRecorder counts routed messages. metrics.PrometheusRecorder satisfies it.
type RouteRecorder interface {
	ObserveChatRoute(route string)
}

// Exchange is published on eventbus.TopicChatExchange for every message.
type Exchange struct {
	Route   Route
	Message string
	Reply   string
	Failed  bool
	At      time.Time
}

// Router dispatches chat messages. All collaborators except the completer
// are optional.
type Router struct {
	completer Completer
	searcher  Searcher
	chatLog   *slog.Logger
	recorder  RouteRecorder
	events    eventbus.Publisher
}

// Option configures a Router.
type Option func(*Router)

// WithSearcher replaces PlaceholderSearcher.
func WithSearcher(s Searcher) Option { return func(r *Router) { r.searcher = s } }

// WithChatLog sets the logger receiving each message, reply and upstream failure.
func WithChatLog(l *slog.Logger) Option { return func(r *Router) { r.chatLog = l } }

// WithRecorder counts routes.
func WithRecorder(rec RouteRecorder) Option { return func(r *Router) { r.recorder = rec } }

// WithPublisher publishes an Exchange per message.
func WithPublisher(p eventbus.Publisher) Option { return func(r *Router) { r.events = p } }

// NewRouter returns a Router calling upstream through c.
func NewRouter(c Completer, opts ...Option) *Router {
	r := &Router{
		completer: c,
		searcher:  PlaceholderSearcher{},
		chatLog:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Match returns the route for message and the text left for that route.
// Remainders after a prefix are trimmed; the default route keeps the
// message as sent.
func Match(message string) (Route, string) {
	switch {
	case hasPrefixFold(message, prefixImprove):
		return RouteImprove, strings.TrimSpace(message[len(prefixImprove):])
	case hasPrefixFold(message, prefixSearch):
		return RouteSearch, strings.TrimSpace(message[len(prefixSearch):])
	case hasPrefixFold(message, prefixAsk):
		return RouteAsk, strings.TrimSpace(message[len(prefixAsk):])
	default:
		return RouteDefault, message
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Route answers message. It always returns a reply; upstream failures become
// one of the user-safe apology texts.
func (r *Router) Route(ctx context.Context, message string) string {
	route, rest := Match(message)
	r.chatLog.Info("chat message received", "route", string(route), "user", message)

	var (
		reply string
		err   error
	)
	switch route {
	case RouteImprove:
		reply, err = r.complete(ctx, llm.CompletionCall{
			Model: improveModel,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: vaniSystemPrompt},
				{Role: llm.RoleUser, Content: "user prompt: " + rest},
			},
			MaxTokens: maxTokens,
		})
	case RouteSearch:
		reply, err = r.searcher.Search(ctx, rest)
	default:
		reply, err = r.complete(ctx, askCall(rest))
	}

	failed := err != nil
	if failed {
		reply = r.apology(route, err)
	}

	r.chatLog.Info("chat reply sent", "route", string(route), "vani", reply)
	if r.recorder != nil {
		r.recorder.ObserveChatRoute(string(route))
	}
	if r.events != nil {
		r.events.Publish(eventbus.TopicChatExchange, Exchange{
			Route: route, Message: message, Reply: reply, Failed: failed, At: time.Now().UTC(),
		})
	}
	return reply
}

// askCall sends question as the only (system) message.
func askCall(question string) llm.CompletionCall {
	return llm.CompletionCall{
		Model:     askModel,
		Messages:  []llm.Message{{Role: llm.RoleSystem, Content: question}},
		MaxTokens: maxTokens,
	}
}

func (r *Router) complete(ctx context.Context, call llm.CompletionCall) (string, error) {
	resp, err := r.completer.Complete(ctx, call)
	if err != nil {
		return "", err
	}
	text := llm.ExtractText(resp)
	if text == "" {
		return "", errNoContent
	}
	return text, nil
}

// apology logs err and returns the reply shown instead of it.
func (r *Router) apology(route Route, err error) string {
	if code := llm.StatusOf(err); code > 0 {
		r.chatLog.Error("HTTP error occurred", "route", string(route), "status", code, "error", err)
		return fmt.Sprintf(replyStatusError, code)
	}
	r.chatLog.Error("An unexpected error occurred", "route", string(route), "error", err)
	return replyUnexpectedError
}
