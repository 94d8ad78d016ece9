// Package tokenizer estimates token counts when the provider stream ends
// without reporting usage (errors, truncated streams), so error metrics
// still carry approximate token totals.
package tokenizer

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens with a lazily initialized tiktoken encoding.
// All supported models are close enough to cl100k_base for accounting
// estimates.
type Estimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func New() *Estimator {
	return &Estimator{}
}

func (e *Estimator) encoder() (*tiktoken.Tiktoken, error) {
	e.once.Do(func() {
		e.enc, e.err = tiktoken.GetEncoding("cl100k_base")
	})
	return e.enc, e.err
}

// CountText returns the token count for text, falling back to a bytes/4
// heuristic if the encoding cannot be loaded.
func (e *Estimator) CountText(text string) int {
	enc, err := e.encoder()
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// CountConversation estimates the prompt tokens of a message history.
// Each message carries a small framing overhead on top of its content.
func (e *Estimator) CountConversation(texts []string) int {
	total := 3 // reply priming
	for _, t := range texts {
		total += 4 + e.CountText(t)
	}
	return total
}
