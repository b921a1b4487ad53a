package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical provider identifiers. This is the only enumeration of providers;
// the YAML override file may retune them but never add new ones.
const (
	ProviderOpenAI = "openai"
	ProviderLlama  = "llama"
	ProviderGemma  = "gemma"
)

// TransportKind selects how a provider is called.
type TransportKind string

const (
	TransportSDK     TransportKind = "sdk"
	TransportRawHTTP TransportKind = "raw_http"
)

// Fixed upstream models.
const (
	ModelGPTOSS = "openai/gpt-oss-20b"
	ModelLlama  = "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"
	ModelGemma  = "google/gemma-3n-E4B-it"
)

// Profile is the static configuration of one provider.
type Profile struct {
	ID        string
	Model     string
	Transport TransportKind
}

// ProfileTable maps provider identifiers to profiles. It is built once at
// start-up and only read afterwards.
type ProfileTable struct {
	profiles map[string]Profile
}

// DefaultProfiles returns the built-in profile table.
func DefaultProfiles() ProfileTable {
	return newProfileTable([]Profile{
		{ID: ProviderOpenAI, Model: ModelGPTOSS, Transport: TransportSDK},
		{ID: ProviderLlama, Model: ModelLlama, Transport: TransportRawHTTP},
		{ID: ProviderGemma, Model: ModelGemma, Transport: TransportSDK},
	})
}

func newProfileTable(ps []Profile) ProfileTable {
	m := make(map[string]Profile, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return ProfileTable{profiles: m}
}

// Lookup resolves a provider identifier, case-insensitively.
func (t ProfileTable) Lookup(provider string) (Profile, error) {
	p, ok := t.profiles[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return p, nil
}

// IDs returns the registered provider identifiers, sorted.
func (t ProfileTable) IDs() []string {
	out := make([]string, 0, len(t.profiles))
	for k := range t.profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ─── YAML overrides ──────────────────────────────────────────────────────────

type profileFile struct {
	Providers map[string]profileOverride `yaml:"providers"`
}

type profileOverride struct {
	Model     string `yaml:"model"`
	Transport string `yaml:"transport"`
}

// LoadProfiles returns the default table, retuned by the YAML file at path.
// An empty path yields the defaults. Entries may only name known providers.
func LoadProfiles(path string) (ProfileTable, error) {
	base := DefaultProfiles()
	if path == "" {
		return base, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ProfileTable{}, fmt.Errorf("llm profiles: read %q: %w", path, err)
	}
	return parseProfiles(base, raw)
}

func parseProfiles(base ProfileTable, raw []byte) (ProfileTable, error) {
	var file profileFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ProfileTable{}, fmt.Errorf("llm profiles: decode: %w", err)
	}

	merged := make([]Profile, 0, len(base.profiles))
	for _, id := range base.IDs() {
		merged = append(merged, base.profiles[id])
	}

	for key, ov := range file.Providers {
		id := strings.ToLower(strings.TrimSpace(key))
		idx := indexOfProfile(merged, id)
		if idx < 0 {
			return ProfileTable{}, fmt.Errorf("llm profiles: %w: %s", ErrUnknownProvider, key)
		}
		if ov.Model != "" {
			merged[idx].Model = ov.Model
		}
		if ov.Transport != "" {
			kind := TransportKind(strings.ToLower(ov.Transport))
			if kind != TransportSDK && kind != TransportRawHTTP {
				return ProfileTable{}, fmt.Errorf("llm profiles: provider %s: invalid transport %q", id, ov.Transport)
			}
			merged[idx].Transport = kind
		}
	}
	return newProfileTable(merged), nil
}

func indexOfProfile(ps []Profile, id string) int {
	for i, p := range ps {
		if p.ID == id {
			return i
		}
	}
	return -1
}
