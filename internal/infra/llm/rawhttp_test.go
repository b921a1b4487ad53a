// Unit tests for RawHTTPClient.
// Uses httptest.NewServer to mock the chat-completions endpoint, no network needed.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedRaw struct {
	Authorization string
	ContentType   string
	UserAgent     string
	Body          map[string]any
}

func newRawServer(t *testing.T, status int, payload string, captured *capturedRaw) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.Authorization = r.Header.Get("Authorization")
			captured.ContentType = r.Header.Get(headerContentType)
			captured.UserAgent = r.Header.Get("User-Agent")
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		w.Header().Set(headerContentType, mimeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRawHTTPClient_Complete_Success(t *testing.T) {
	t.Parallel()

	var captured capturedRaw
	srv := newRawServer(t, http.StatusOK, `{"choices":[{"message":{"content":"TOGETHER SHORT OK"}}]}`, &captured)

	c := NewRawHTTPClient(RawHTTPConfig{APIKey: "test-key", URL: srv.URL})
	resp, err := c.Complete(context.Background(), CompletionCall{
		Model:     ModelLlama,
		Messages:  []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "usr"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, err := StrictContent(resp)
	if err != nil || got != "TOGETHER SHORT OK" {
		t.Fatalf("StrictContent() = %q, %v", got, err)
	}
	if captured.Authorization != "Bearer test-key" {
		t.Errorf("Authorization = %q; want Bearer test-key", captured.Authorization)
	}
	if !strings.HasPrefix(captured.UserAgent, "promptforge/") {
		t.Errorf("User-Agent = %q; want promptforge/...", captured.UserAgent)
	}
	if captured.ContentType != mimeJSON {
		t.Errorf("Content-Type = %q; want %q", captured.ContentType, mimeJSON)
	}
	if captured.Body["model"] != ModelLlama {
		t.Errorf("model = %v; want %q", captured.Body["model"], ModelLlama)
	}
	if captured.Body["max_tokens"] != float64(100) {
		t.Errorf("max_tokens = %v; want 100", captured.Body["max_tokens"])
	}
	msgs, _ := captured.Body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestRawHTTPClient_Complete_OmitsZeroMaxTokens(t *testing.T) {
	t.Parallel()

	var captured capturedRaw
	srv := newRawServer(t, http.StatusOK, `{"choices":[]}`, &captured)

	c := NewRawHTTPClient(RawHTTPConfig{APIKey: "k", URL: srv.URL})
	if _, err := c.Complete(context.Background(), CompletionCall{Model: "m"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, ok := captured.Body["max_tokens"]; ok {
		t.Errorf("max_tokens should be omitted when zero, body=%v", captured.Body)
	}
}

func TestRawHTTPClient_Complete_MissingCredential(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewRawHTTPClient(RawHTTPConfig{URL: srv.URL})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if IsTransport(err) {
		t.Error("missing credential must not be reported as a transport error")
	}
	if called {
		t.Error("no request should be sent without a credential")
	}
}

func TestRawHTTPClient_Complete_Non2xx(t *testing.T) {
	t.Parallel()

	srv := newRawServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`, nil)

	c := NewRawHTTPClient(RawHTTPConfig{APIKey: "k", URL: srv.URL})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if got := StatusOf(err); got != http.StatusTooManyRequests {
		t.Fatalf("StatusOf(err) = %d; want 429 (err=%v)", got, err)
	}
}

func TestRawHTTPClient_Complete_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv := newRawServer(t, http.StatusOK, `not json`, nil)

	c := NewRawHTTPClient(RawHTTPConfig{APIKey: "k", URL: srv.URL})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRawHTTPClient_Complete_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewRawHTTPClient(RawHTTPConfig{APIKey: "k", URL: url})
	_, err := c.Complete(context.Background(), CompletionCall{Model: "m"})
	if !IsTransport(err) || StatusOf(err) != 0 {
		t.Fatalf("expected status-less TransportError, got %v", err)
	}
}
