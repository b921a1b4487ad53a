package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/promptforge/internal/version"
)

const (
	// DefaultRawURL is the fixed chat-completions endpoint of the raw HTTP transport.
	DefaultRawURL = "https://api.together.xyz/v1/chat/completions"

	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	maxErrorBody      = 2048
)

// RawHTTPConfig describes the raw HTTP transport.
type RawHTTPConfig struct {
	APIKey  string
	URL     string
	Timeout time.Duration
}

// RawHTTPClient POSTs chat completions as plain JSON using net/http.
type RawHTTPClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewRawHTTPClient creates a RawHTTPClient with a 60s default timeout.
func NewRawHTTPClient(cfg RawHTTPConfig) *RawHTTPClient {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultRawURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RawHTTPClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ─── internal JSON types ─────────────────────────────────────────────────────

type rawChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rawChatRequest struct {
	Model     string           `json:"model"`
	Messages  []rawChatMessage `json:"messages"`
	MaxTokens int              `json:"max_tokens,omitempty"`
}

// Complete sends one POST and returns the decoded JSON payload as a mapping.
// Non-2xx statuses are TransportErrors; a missing key fails before any I/O.
func (c *RawHTTPClient) Complete(ctx context.Context, call CompletionCall) (UpstreamResponse, error) {
	if c.apiKey == "" {
		return UpstreamResponse{}, ErrMissingCredential
	}

	msgs := make([]rawChatMessage, len(call.Messages))
	for i, m := range call.Messages {
		msgs[i] = rawChatMessage(m)
	}
	body, err := json.Marshal(rawChatRequest{
		Model:     call.Model,
		Messages:  msgs,
		MaxTokens: call.MaxTokens,
	})
	if err != nil {
		return UpstreamResponse{}, fmt.Errorf("raw http: encode request: %w", err)
	}

	respBody, err := c.doPost(ctx, body)
	if err != nil {
		return UpstreamResponse{}, err
	}
	defer respBody.Close()

	var decoded map[string]any
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return UpstreamResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	return UpstreamResponse{Mapping: decoded}, nil
}

// doPost sends the request and returns the response body on 2xx.
// Caller is responsible for closing the returned ReadCloser.
func (c *RawHTTPClient) doPost(ctx context.Context, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("raw http: build request: %w", err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close() //nolint:errcheck
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(detail))),
		}
	}
	return resp.Body, nil
}
