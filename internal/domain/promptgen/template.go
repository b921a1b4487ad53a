package promptgen

import (
	"fmt"
	"strings"

	"github.com/matiasleandrokruk/promptforge/internal/infra/llm"
)

// Mode selects between the structured Markdown prompt and the compact one.
type Mode string

const (
	ModeFull  Mode = "full"
	ModeShort Mode = "short"
)

// ShortMaxTokens is the output ceiling sent with every short-mode request.
const ShortMaxTokens = 100

// User-content prefixes. SDK providers get the same wording in both modes;
// the raw HTTP provider is phrased per mode.
const (
	prefixSDK          = "user prompt: "
	prefixRawHTTPFull  = "Here is the user prompt: "
	prefixRawHTTPShort = "Here is the task for which you need to write the prompt: "
)

// Template is the instruction sent upstream for one (provider, mode) pair.
type Template struct {
	System     string
	UserPrefix string
	MaxTokens  int // 0: no ceiling
}

// UserContent prefixes task for the user turn.
func (t Template) UserContent(task string) string {
	return t.UserPrefix + task
}

// WithPersonaHint appends a persona line when task matches a known domain.
// Unmatched tasks return t unchanged; the instruction already tells the model
// to pick a relevant expert.
func (t Template) WithPersonaHint(task string) Template {
	persona, ok := lookupPersona(task)
	if !ok {
		return t
	}
	t.System += fmt.Sprintf("\n\nPersona hint: this request looks like %s work; write the Persona section as a %s.",
		persona.domain, persona.role)
	return t
}

// personaRule maps domain keywords to the expert the prompt should address.
type personaRule struct {
	domain   string
	role     string
	keywords []string
}

// personaTable is ordered; the first rule with a matching keyword wins.
var personaTable = []personaRule{
	{"cooking", "chef", []string{"cook", "recipe", "bake", "baking", "meal", "cuisine", "dish"}},
	{"software", "software engineer", []string{"code", "coding", "software", "program", "api", "bug", "golang", "python", "javascript", "database"}},
	{"design", "designer", []string{"design", "logo", "ui", "ux", "layout", "mockup"}},
	{"data analysis", "data analyst", []string{"data", "dataset", "analytics", "statistics", "spreadsheet", "dashboard"}},
	{"marketing", "marketing strategist", []string{"marketing", "campaign", "brand", "seo", "advert", "social media"}},
	{"writing", "editor", []string{"write", "writing", "essay", "poem", "story", "article", "blog", "novel"}},
	{"education", "teacher", []string{"teach", "lesson", "student", "curriculum", "course", "explain"}},
	{"finance", "financial analyst", []string{"finance", "budget", "invest", "stock", "tax", "accounting"}},
	{"legal", "legal advisor", []string{"legal", "law", "contract", "compliance", "lawsuit"}},
	{"health", "healthcare professional", []string{"health", "medical", "diet", "fitness", "symptom", "nutrition"}},
}

const genericPersona = "relevant domain expert"

// InferPersona returns the expert role for task, or a generic expert when no
// domain keyword matches.
func InferPersona(task string) string {
	if p, ok := lookupPersona(task); ok {
		return p.role
	}
	return genericPersona
}

func lookupPersona(task string) (personaRule, bool) {
	words := tokenize(task)
	lower := " " + strings.Join(words, " ") + " "
	for _, rule := range personaTable {
		for _, kw := range rule.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(lower, " "+kw+" ") {
					return rule, true
				}
				continue
			}
			for _, w := range words {
				if w == kw || (len(kw) >= 4 && strings.HasPrefix(w, kw)) {
					return rule, true
				}
			}
		}
	}
	return personaRule{}, false
}

// tokenize lower-cases s and splits it on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

var fullSystemPrompt = buildFullSystemPrompt()

func buildFullSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a senior prompt engineer. Transform the user's request into a structured, ")
	b.WriteString("professional prompt in Markdown using exactly these sections:\n\n")
	b.WriteString("### Persona\nDescribe the relevant role the model should assume.\n\n")
	b.WriteString("### Task\nRewrite the user request as a clear, detailed instruction.\n\n")
	b.WriteString("### Constraints\nList concrete requirements, acceptance criteria and boundaries.\n\n")
	b.WriteString("### Audience (include only if the request explicitly names an audience)\n\n")
	b.WriteString("### Tone & Style (include only if the request explicitly names a tone or style)\n\n")
	b.WriteString("Infer the persona from the domain of the request using this table:\n")
	for _, rule := range personaTable {
		fmt.Fprintf(&b, "- %s → %s\n", rule.domain, rule.role)
	}
	b.WriteString("If no domain matches, choose a generically relevant expert.\n\n")
	b.WriteString("Persona, Task and Constraints are mandatory. Never add any other heading, ")
	b.WriteString("and never invent an Audience or Tone & Style the request does not state.")
	return b.String()
}

const shortSystemPrompt = "You have to convert the user prompt into one that will get an output at a " +
	"professional level. Before sending me the prompt, review it yourself and optimize it " +
	"to make it under 101 tokens."

// SelectTemplate returns the instruction for provider in mode.
// The instruction text is the same for every provider; the user prefix follows
// the provider's transport.
func SelectTemplate(profiles llm.ProfileTable, provider string, mode Mode) (Template, error) {
	profile, err := profiles.Lookup(provider)
	if err != nil {
		return Template{}, err
	}

	switch mode {
	case ModeShort:
		t := Template{System: shortSystemPrompt, UserPrefix: prefixSDK, MaxTokens: ShortMaxTokens}
		if profile.Transport == llm.TransportRawHTTP {
			t.UserPrefix = prefixRawHTTPShort
		}
		return t, nil
	case ModeFull, "":
		t := Template{System: fullSystemPrompt, UserPrefix: prefixSDK}
		if profile.Transport == llm.TransportRawHTTP {
			t.UserPrefix = prefixRawHTTPFull
		}
		return t, nil
	default:
		return Template{}, fmt.Errorf("promptgen: unknown mode %q", mode)
	}
}
