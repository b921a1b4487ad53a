// Unit tests for SDKClient: a stub ChatCompleter for request shaping and a
// real go-openai client against httptest for error mapping.
package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// stubCompleter records the last request and replies with a fixed response.
type stubCompleter struct {
	last openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.last = req
	return s.resp, s.err
}

func TestSDKClient_Complete_PassesThroughResponse(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{resp: *chatResponse("VISION OK")}
	c := NewSDKClientWith(stub)

	resp, err := c.Complete(context.Background(), CompletionCall{
		Model:     ModelGPTOSS,
		Messages:  []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "user prompt: x"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Chat == nil || ExtractText(resp) != "VISION OK" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if stub.last.Model != ModelGPTOSS {
		t.Errorf("model = %q; want %q", stub.last.Model, ModelGPTOSS)
	}
	if stub.last.MaxTokens != 100 {
		t.Errorf("max tokens = %d; want 100", stub.last.MaxTokens)
	}
	if len(stub.last.Messages) != 2 || stub.last.Messages[1].Content != "user prompt: x" {
		t.Errorf("unexpected messages: %+v", stub.last.Messages)
	}
}

func TestSDKClient_Complete_UnknownErrorIsTransport(t *testing.T) {
	t.Parallel()

	c := NewSDKClientWith(&stubCompleter{err: errors.New("dial tcp: refused")})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if !IsTransport(err) || StatusOf(err) != 0 {
		t.Fatalf("expected status-less TransportError, got %v", err)
	}
}

func TestSDKClient_Complete_CanceledIsNotTransport(t *testing.T) {
	t.Parallel()

	c := NewSDKClientWith(&stubCompleter{err: context.Canceled})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if IsTransport(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected bare context.Canceled, got %v", err)
	}
}

func TestSDKClient_RealClient_AgainstTestServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sdk-key" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set(headerContentType, mimeJSON)
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"GEMMA OK"}}]}`))
	}))
	defer srv.Close()

	c := NewSDKClient(SDKConfig{APIKey: "sdk-key", BaseURL: srv.URL + "/"})
	resp, err := c.Complete(context.Background(), CompletionCall{
		Model:    ModelGemma,
		Messages: []Message{{Role: RoleSystem, Content: "s"}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got := ExtractText(resp); got != "GEMMA OK" {
		t.Fatalf("ExtractText() = %q; want GEMMA OK", got)
	}
}

func TestSDKClient_RealClient_StatusIsKept(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerContentType, mimeJSON)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewSDKClient(SDKConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m", Messages: []Message{{Role: RoleSystem, Content: "s"}}})
	if got := StatusOf(err); got != http.StatusServiceUnavailable {
		t.Fatalf("StatusOf(err) = %d; want 503 (err=%v)", got, err)
	}
}
