// internal/context/engine.go
package context

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/brainassist/internal/types"
)

// attachmentTokens is the flat cost charged per inline attachment. Gemini
// bills a standard image at 258 tokens; documents vary, this is an estimate.
const attachmentTokens = 258

// Engine trims replayed history to a token budget.
type Engine struct {
	count     func(string) int
	maxTokens int
	reserve   int
}

// New creates a context engine with the specified token budget.
// model is used to select the appropriate tokenizer (e.g. "gpt-4").
// maxTokens is the model's context window size.
// reserve is the number of tokens to reserve for the model's response.
func New(model string, maxTokens, reserve int) (*Engine, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models (all gemini names)
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return NewWithCounter(func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}, maxTokens, reserve), nil
}

// NewWithCounter builds an engine around an arbitrary token counter.
func NewWithCounter(count func(string) int, maxTokens, reserve int) *Engine {
	return &Engine{count: count, maxTokens: maxTokens, reserve: reserve}
}

// Budget is the number of input tokens available for system + history.
func (e *Engine) Budget() int {
	return e.maxTokens - e.reserve
}

// CountMessage estimates the tokens one transcript entry costs.
func (e *Engine) CountMessage(m types.Message) int {
	return e.count(m.Text) + len(m.Attachments)*attachmentTokens
}

// Trim returns the longest suffix of history that fits in the budget left
// after the system instruction. Error entries never count and never survive.
// The result always starts with a user turn.
func (e *Engine) Trim(system string, history []types.Message) []types.Message {
	remaining := e.Budget() - e.count(system)

	start := len(history)
	kept := 0
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.IsError {
			continue
		}
		cost := e.CountMessage(m)
		if cost > remaining {
			break
		}
		remaining -= cost
		start = i
		kept++
	}

	out := make([]types.Message, 0, kept)
	for _, m := range history[start:] {
		if m.IsError {
			continue
		}
		if len(out) == 0 && m.Role != types.RoleUser {
			continue
		}
		out = append(out, m)
	}
	return out
}
