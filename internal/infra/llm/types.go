// Package llm defines the provider profile table, the two upstream transports
// (SDK-style and raw HTTP) and the normalization of their responses.
// All types here are shared between the dispatcher and the transports.
package llm

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Call is a provider-addressed request: the profile table resolves Provider
// to an upstream model and transport.
type Call struct {
	Provider  string
	System    string
	User      string
	MaxTokens int // 0 means no ceiling (provider default).
}

// Messages returns the system+user pair sent upstream.
// An empty user turn is omitted.
func (c Call) Messages() []Message {
	msgs := []Message{{Role: RoleSystem, Content: c.System}}
	if c.User != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: c.User})
	}
	return msgs
}

// CompletionCall addresses a fixed upstream model directly through the SDK
// transport, bypassing the profile table.
type CompletionCall struct {
	Model     string
	Messages  []Message
	MaxTokens int
}
