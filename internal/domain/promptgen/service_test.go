// Unit tests for Generator: validation, round trips through the real
// dispatcher with fake transports, and failure mapping.
package promptgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/matiasleandrokruk/promptforge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/promptforge/internal/infra/llm"
	"github.com/matiasleandrokruk/promptforge/internal/infra/logging"
)

// fakeTransport records every call and replies with a fixed response.
type fakeTransport struct {
	calls []llm.CompletionCall
	resp  llm.UpstreamResponse
	err   error
}

func (f *fakeTransport) Complete(_ context.Context, call llm.CompletionCall) (llm.UpstreamResponse, error) {
	f.calls = append(f.calls, call)
	return f.resp, f.err
}

type recordingPublisher struct{ events []eventbus.Event }

func (p *recordingPublisher) Publish(topic string, payload any) {
	p.events = append(p.events, eventbus.Event{Topic: topic, Payload: payload})
}

func sdkReply(content string) llm.UpstreamResponse {
	return llm.UpstreamResponse{Chat: &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}}},
	}}
}

func rawReply(content any) llm.UpstreamResponse {
	return llm.UpstreamResponse{Mapping: map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	}}
}

type fixture struct {
	sdk, raw *fakeTransport
	events   *recordingPublisher
	gen      *Generator
}

func newFixture(sdkResp, rawResp llm.UpstreamResponse) *fixture {
	f := &fixture{
		sdk:    &fakeTransport{resp: sdkResp},
		raw:    &fakeTransport{resp: rawResp},
		events: &recordingPublisher{},
	}
	profiles := llm.DefaultProfiles()
	d := llm.NewDispatcher(profiles, f.sdk, f.raw, nil)
	f.gen = NewGenerator(profiles, d, WithPublisher(f.events), WithLogger(logging.Discard()))
	return f
}

func (f *fixture) totalCalls() int { return len(f.sdk.calls) + len(f.raw.calls) }

func (f *fixture) lastCall(t *testing.T) llm.CompletionCall {
	t.Helper()
	switch {
	case len(f.sdk.calls) == 1 && len(f.raw.calls) == 0:
		return f.sdk.calls[0]
	case len(f.raw.calls) == 1 && len(f.sdk.calls) == 0:
		return f.raw.calls[0]
	default:
		t.Fatalf("expected exactly one upstream call, got sdk=%d raw=%d", len(f.sdk.calls), len(f.raw.calls))
		return llm.CompletionCall{}
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestGenerate_MissingTask_NoTransportCall(t *testing.T) {
	t.Parallel()

	for _, task := range []string{"", "   ", "\n\t"} {
		f := newFixture(sdkReply("x"), rawReply("x"))
		_, err := f.gen.Generate(context.Background(), Request{Task: task, Provider: llm.ProviderLlama})
		if !errors.Is(err, ErrMissingTask) {
			t.Errorf("task %q: error = %v; want ErrMissingTask", task, err)
		}
		if f.totalCalls() != 0 {
			t.Errorf("task %q: transport was called", task)
		}
	}
}

func TestGenerate_MissingProvider(t *testing.T) {
	t.Parallel()

	f := newFixture(sdkReply("x"), rawReply("x"))
	if _, err := f.gen.Generate(context.Background(), Request{Task: "write a poem"}); !errors.Is(err, ErrMissingProvider) {
		t.Fatalf("error = %v; want ErrMissingProvider", err)
	}
	if f.totalCalls() != 0 {
		t.Error("transport was called")
	}
}

func TestGenerate_UnknownProvider(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeFull, ModeShort} {
		f := newFixture(sdkReply("x"), rawReply("x"))
		got, err := f.gen.Generate(context.Background(), Request{Task: "t", Provider: "Mistral", Mode: mode})
		if err != nil {
			t.Fatalf("unknown provider must not be an error, got %v", err)
		}
		if got != "❌ Unknown provider: mistral" || !strings.Contains(got, "Unknown provider") {
			t.Errorf("got %q", got)
		}
		if f.totalCalls() != 0 {
			t.Error("transport was called for an unknown provider")
		}
	}
}

// ============================================================================
// Round trips
// ============================================================================

func TestGenerate_RoundTrip_EveryProviderAndMode(t *testing.T) {
	t.Parallel()

	const want = "ROUND TRIP OK"
	for _, id := range llm.DefaultProfiles().IDs() {
		for _, mode := range []Mode{ModeFull, ModeShort} {
			id, mode := id, mode
			t.Run(id+"/"+string(mode), func(t *testing.T) {
				t.Parallel()

				f := newFixture(sdkReply(want), rawReply(want))
				got, err := f.gen.Generate(context.Background(), Request{Task: "write a poem", Provider: id, Mode: mode})
				if err != nil {
					t.Fatalf("Generate error = %v", err)
				}
				if got != want {
					t.Fatalf("Generate = %q; want %q", got, want)
				}

				call := f.lastCall(t)
				profile, _ := llm.DefaultProfiles().Lookup(id)
				if call.Model != profile.Model {
					t.Errorf("model = %q; want %q", call.Model, profile.Model)
				}
				wantCeiling := 0
				if mode == ModeShort {
					wantCeiling = 100
				}
				if call.MaxTokens != wantCeiling {
					t.Errorf("MaxTokens = %d; want %d", call.MaxTokens, wantCeiling)
				}
				if len(call.Messages) != 2 || call.Messages[0].Role != llm.RoleSystem || call.Messages[1].Role != llm.RoleUser {
					t.Fatalf("unexpected messages: %+v", call.Messages)
				}
				if !strings.HasSuffix(call.Messages[1].Content, "write a poem") {
					t.Errorf("user content = %q", call.Messages[1].Content)
				}
			})
		}
	}
}

func TestGenerate_FullModeAddsPersonaHint(t *testing.T) {
	t.Parallel()

	f := newFixture(sdkReply("ok"), rawReply("ok"))
	if _, err := f.gen.Generate(context.Background(), Request{Task: "a vegan recipe", Provider: llm.ProviderOpenAI}); err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if sys := f.lastCall(t).Messages[0].Content; !strings.Contains(sys, "Persona hint") || !strings.Contains(sys, "chef") {
		t.Errorf("expected persona hint in system prompt, got %q", sys)
	}
}

func TestGenerate_SDKNullContentIsEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(sdkReply(""), rawReply(nil))
	got, err := f.gen.Generate(context.Background(), Request{Task: "t", Provider: llm.ProviderGemma})
	if err != nil || got != "" {
		t.Fatalf("Generate = %q, %v; want empty text", got, err)
	}
}

func TestGenerate_PublishesEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(sdkReply("ok"), rawReply("ok"))
	if _, err := f.gen.Generate(context.Background(), Request{Task: "t", Provider: llm.ProviderLlama, Mode: ModeShort}); err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if len(f.events.events) != 1 || f.events.events[0].Topic != eventbus.TopicPromptGenerated {
		t.Fatalf("unexpected events: %+v", f.events.events)
	}
	evt, ok := f.events.events[0].Payload.(Generated)
	if !ok {
		t.Fatalf("payload type %T", f.events.events[0].Payload)
	}
	if evt.Provider != llm.ProviderLlama || evt.Mode != ModeShort || evt.Prompt != "ok" || evt.Failed || evt.At.IsZero() {
		t.Errorf("unexpected event: %+v", evt)
	}
	if evt.Tokens == 0 {
		t.Error("short mode should record a token estimate")
	}
}

// ============================================================================
// Failure mapping
// ============================================================================

func TestGenerate_FailureStrings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		provider string
		err      error
		resp     llm.UpstreamResponse
		want     string
	}{
		{"status", llm.ProviderOpenAI, &llm.TransportError{StatusCode: 503, Err: errors.New("secret detail")}, llm.UpstreamResponse{}, "❌ Error: the AI service returned status 503"},
		{"unreachable", llm.ProviderGemma, &llm.TransportError{Err: errors.New("dial tcp 10.0.0.1")}, llm.UpstreamResponse{}, "❌ Error: the AI service could not be reached"},
		{"credential", llm.ProviderLlama, llm.ErrMissingCredential, llm.UpstreamResponse{}, "❌ Error: TOGETHER_API_KEY is not configured"},
		{"malformed", llm.ProviderLlama, nil, llm.UpstreamResponse{Mapping: map[string]any{"data": 1}}, "❌ Error: the AI service returned an unreadable response"},
	}
	for _, tc := range cases {
		f := newFixture(llm.UpstreamResponse{}, llm.UpstreamResponse{})
		f.sdk.err, f.raw.err = tc.err, tc.err
		f.raw.resp = tc.resp

		got, err := f.gen.Generate(context.Background(), Request{Task: "t", Provider: tc.provider})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %q; want %q", tc.name, got, tc.want)
		}
		if strings.Contains(got, "secret") || strings.Contains(got, "dial") {
			t.Errorf("%s: internal detail leaked: %q", tc.name, got)
		}
		if n := len(f.events.events); n != 1 || !f.events.events[0].Payload.(Generated).Failed {
			t.Errorf("%s: expected one failed event, got %+v", tc.name, f.events.events)
		}
	}
}

func TestGenerate_UnexpectedError(t *testing.T) {
	t.Parallel()

	f := newFixture(llm.UpstreamResponse{}, llm.UpstreamResponse{})
	f.sdk.err = context.Canceled

	got, err := f.gen.Generate(context.Background(), Request{Task: "t", Provider: llm.ProviderOpenAI, Mode: ModeShort})
	if !errors.Is(err, ErrUnexpected) || !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want ErrUnexpected wrapping the cause", err)
	}
	if got != "" {
		t.Errorf("text = %q; want empty", got)
	}
}

func TestFailureMessage_Unknown(t *testing.T) {
	t.Parallel()

	if _, known := FailureMessage("openai", errors.New("boom")); known {
		t.Error("plain errors have no user-facing message")
	}
}
