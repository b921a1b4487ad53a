package transcript

import "time"

// Kind distinguishes chat exchanges from prompt generations.
type Kind string

const (
	KindChat     Kind = "chat"
	KindGenerate Kind = "generate"
)

// Entry is one persisted row. Entries are append-only.
type Entry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Route     string    `json:"route,omitempty"`    // chat route; empty for generations
	Provider  string    `json:"provider,omitempty"` // generation provider; empty for chat
	Mode      string    `json:"mode,omitempty"`     // generation mode; empty for chat
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Failed    bool      `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}
