package app

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Pricing converts token counts into accumulated cost. Zero rates are valid
// (cost stays at zero) but call counting still happens.
type Pricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

func (p Pricing) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1000*p.PromptPer1K +
		float64(completionTokens)/1000*p.CompletionPer1K
}

// EstimateTokens returns a conservative token count for a piece of text.
// It deliberately over-estimates so cost never reads lower than reality.
// Used only when no real tokenizer is available for the model.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	b := len(text)
	r := utf8.RuneCountInString(text)
	byBytes := b / 3
	byRunes := r / 2
	if byBytes < byRunes {
		return byRunes
	}
	return byBytes
}

// tokenCounter wraps a tiktoken encoding with the heuristic fallback. The
// encoding is resolved lazily because tiktoken may need to fetch vocabulary
// data; a resolution failure just pins the counter to the estimate.
type tokenCounter struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

func newTokenCounter(model string) *tokenCounter {
	return &tokenCounter{model: model}
}

func (c *tokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
