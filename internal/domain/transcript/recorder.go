package transcript

import (
	"context"
	"log/slog"
	"sync"

	"github.com/matiasleandrokruk/promptforge/internal/domain/chat"
	"github.com/matiasleandrokruk/promptforge/internal/domain/promptgen"
	"github.com/matiasleandrokruk/promptforge/internal/infra/eventbus"
)

// Appender is the write side of Store.
type Appender interface {
	Append(ctx context.Context, e Entry) (Entry, error)
}

// Recorder copies bus events into the transcript.
type Recorder struct {
	store  Appender
	logger *slog.Logger
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store Appender, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Start subscribes to both topics and drains them until the bus is closed.
// Cancelling ctx does not stop the drain: events published during shutdown
// are still recorded. Close the bus, then Wait on the returned WaitGroup.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) *sync.WaitGroup {
	var wg sync.WaitGroup
	for _, topic := range []string{eventbus.TopicChatExchange, eventbus.TopicPromptGenerated} {
		ch := bus.Subscribe(topic)
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.drain(ctx, ch)
		}()
	}
	return &wg
}

func (r *Recorder) drain(ctx context.Context, ch <-chan eventbus.Event) {
	ctx = context.WithoutCancel(ctx)
	for evt := range ch {
		r.Record(ctx, evt)
	}
}

// Record persists one event. Unknown payloads are ignored; store failures
// are logged and dropped.
func (r *Recorder) Record(ctx context.Context, evt eventbus.Event) {
	entry, ok := EntryFromEvent(evt)
	if !ok {
		r.logger.Warn("transcript: unexpected event payload", "topic", evt.Topic)
		return
	}
	// Detached so a cancelled request context never loses the row.
	if _, err := r.store.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("transcript: append failed", "kind", string(entry.Kind), "error", err)
	}
}

// EntryFromEvent converts a chat.Exchange or promptgen.Generated payload.
func EntryFromEvent(evt eventbus.Event) (Entry, bool) {
	switch p := evt.Payload.(type) {
	case chat.Exchange:
		return Entry{
			Kind:      KindChat,
			Route:     string(p.Route),
			Input:     p.Message,
			Output:    p.Reply,
			Failed:    p.Failed,
			CreatedAt: p.At,
		}, true
	case promptgen.Generated:
		return Entry{
			Kind:      KindGenerate,
			Provider:  p.Provider,
			Mode:      string(p.Mode),
			Input:     p.Task,
			Output:    p.Prompt,
			Failed:    p.Failed,
			CreatedAt: p.At,
		}, true
	default:
		return Entry{}, false
	}
}
