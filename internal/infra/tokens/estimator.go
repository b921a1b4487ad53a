// Package tokens estimates how many model tokens a piece of text costs.
// Used to report the size of short-mode prompts against their 100-token budget.
package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used by the gpt-oss family.
const DefaultEncoding = "cl100k_base"

// Estimator counts tokens in text.
type Estimator interface {
	Estimate(text string) int
}

// TiktokenEstimator counts BPE tokens. The encoding is loaded on first use;
// if loading fails every call falls back to WordEstimator.
type TiktokenEstimator struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	err      error
	fallback WordEstimator
}

// New returns a TiktokenEstimator for encoding (DefaultEncoding when empty).
func New(encoding string) *TiktokenEstimator {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenEstimator{encoding: encoding}
}

// Estimate implements Estimator.
func (t *TiktokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encoding)
	})
	if t.err != nil || t.enc == nil {
		return t.fallback.Estimate(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Err reports why the BPE encoding could not be loaded, if it was tried.
func (t *TiktokenEstimator) Err() error {
	return t.err
}

// WordEstimator approximates tokens as 4/3 of the whitespace-separated words.
type WordEstimator struct{}

// Estimate implements Estimator.
func (WordEstimator) Estimate(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}
