package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultSDKBaseURL is Together's OpenAI-compatible API root.
	DefaultSDKBaseURL = "https://api.together.xyz/v1"
	defaultTimeout    = 60 * time.Second
)

// ChatCompleter is the slice of the go-openai client the SDK transport needs.
// *openai.Client satisfies it; tests substitute stubs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SDKConfig describes the long-lived SDK client.
type SDKConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// SDKClient issues chat completions through the go-openai SDK.
type SDKClient struct {
	api ChatCompleter
}

// NewSDKClient builds the process-wide SDK client. A missing key is not an
// error here: the upstream rejects the call and the failure surfaces as a
// TransportError, as the hosted client library would do.
func NewSDKClient(cfg SDKConfig) *SDKClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultSDKBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = baseURL
	oc.HTTPClient = &http.Client{Timeout: timeout}
	return &SDKClient{api: openai.NewClientWithConfig(oc)}
}

// NewSDKClientWith wraps an existing ChatCompleter.
func NewSDKClientWith(api ChatCompleter) *SDKClient {
	return &SDKClient{api: api}
}

// Complete performs one non-streaming chat completion and returns the SDK
// object unmodified.
func (c *SDKClient) Complete(ctx context.Context, call CompletionCall) (UpstreamResponse, error) {
	msgs := make([]openai.ChatCompletionMessage, len(call.Messages))
	for i, m := range call.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     call.Model,
		Messages:  msgs,
		MaxTokens: call.MaxTokens,
	})
	if err != nil {
		return UpstreamResponse{}, wrapSDKError(err)
	}
	return UpstreamResponse{Chat: &resp}, nil
}

// wrapSDKError keeps the HTTP status of SDK failures and hides the rest
// behind a TransportError.
func wrapSDKError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &TransportError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Err: err}
}
