package llm

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// UpstreamResponse is whatever a transport handed back. At most one field is
// set: Chat/Completion for SDK objects, Mapping for decoded JSON payloads.
// A zero value is a legal, empty response.
type UpstreamResponse struct {
	Chat       *openai.ChatCompletionResponse
	Completion *openai.CompletionResponse
	Mapping    map[string]any
}

// Shape names the variant that produced the extracted text.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeSDKChoiceContent
	ShapeSDKChoiceText
	ShapeMappingChoiceContent
	ShapeMappingChoiceText
)

func (s Shape) String() string {
	switch s {
	case ShapeSDKChoiceContent:
		return "sdk_choice_content"
	case ShapeSDKChoiceText:
		return "sdk_choice_text"
	case ShapeMappingChoiceContent:
		return "mapping_choice_content"
	case ShapeMappingChoiceText:
		return "mapping_choice_text"
	default:
		return "empty"
	}
}

// ExtractText returns the completion text of resp, or "" when none is found.
// It never fails.
func ExtractText(resp UpstreamResponse) string {
	_, text := Classify(resp)
	return text
}

// Classify matches resp against the variants in fallback order:
// SDK object (message content, then choice text), then mapping (same two
// steps), then empty. Any panic while probing degrades to ShapeEmpty.
func Classify(resp UpstreamResponse) (shape Shape, text string) {
	defer func() {
		if r := recover(); r != nil {
			shape, text = ShapeEmpty, ""
		}
	}()

	if s, t := classifyObject(resp); t != "" {
		return s, t
	}
	if s, t := classifyMapping(resp.Mapping); t != "" {
		return s, t
	}
	return ShapeEmpty, ""
}

func classifyObject(resp UpstreamResponse) (Shape, string) {
	if resp.Chat != nil && len(resp.Chat.Choices) > 0 {
		if content := renderSDKMessage(resp.Chat.Choices[0].Message); content != "" {
			return ShapeSDKChoiceContent, content
		}
	}
	if resp.Completion != nil && len(resp.Completion.Choices) > 0 {
		if text := resp.Completion.Choices[0].Text; text != "" {
			return ShapeSDKChoiceText, text
		}
	}
	return ShapeEmpty, ""
}

func renderSDKMessage(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" {
		return msg.Content
	}
	if len(msg.MultiContent) == 0 {
		return ""
	}
	parts := make([]string, 0, len(msg.MultiContent))
	for _, p := range msg.MultiContent {
		parts = append(parts, renderSDKPart(p))
	}
	return strings.Join(parts, " ")
}

func renderSDKPart(p openai.ChatMessagePart) string {
	switch {
	case p.Text != "":
		return p.Text
	case p.ImageURL != nil:
		return p.ImageURL.URL
	default:
		return string(p.Type)
	}
}

func classifyMapping(m map[string]any) (Shape, string) {
	if m == nil {
		return ShapeEmpty, ""
	}
	first, ok := firstChoice(m["choices"])
	if !ok {
		return ShapeEmpty, ""
	}
	if msg, ok := first["message"].(map[string]any); ok {
		if content := renderValue(msg["content"]); content != "" {
			return ShapeMappingChoiceContent, content
		}
	}
	if text := renderValue(first["text"]); text != "" {
		return ShapeMappingChoiceText, text
	}
	return ShapeEmpty, ""
}

// firstChoice returns choices[0] as a mapping, accepting both decoded JSON
// ([]any) and Go-built ([]map[string]any) lists.
func firstChoice(v any) (map[string]any, bool) {
	switch choices := v.(type) {
	case []any:
		if len(choices) == 0 {
			return nil, false
		}
		first, ok := choices[0].(map[string]any)
		return first, ok
	case []map[string]any:
		if len(choices) == 0 {
			return nil, false
		}
		return choices[0], true
	default:
		return nil, false
	}
}

// renderValue stringifies a content value: strings verbatim, lists joined by
// a single space, nil as "", anything else via fmt.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, renderPart(item))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(val)
	}
}

func renderPart(item any) string {
	if m, ok := item.(map[string]any); ok {
		if text, ok := m["text"].(string); ok {
			return text
		}
	}
	if s, ok := item.(string); ok {
		return s
	}
	return fmt.Sprint(item)
}

// StrictContent unwraps choices[0].message.content from a raw HTTP payload.
// Unlike ExtractText it does not fall back: a missing shape is
// ErrMalformedResponse. A null content yields "".
func StrictContent(resp UpstreamResponse) (string, error) {
	first, ok := firstChoice(resp.Mapping["choices"])
	if !ok {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	msg, ok := first["message"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: choices[0] has no message", ErrMalformedResponse)
	}
	switch content := msg["content"].(type) {
	case string:
		return content, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: content is %T", ErrMalformedResponse, content)
	}
}
