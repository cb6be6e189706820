package llm

import (
	"context"
)

// MockCompleter is a scripted Completer for tests. Each call consumes the
// next queued response; when the queue is exhausted the last response is
// repeated.
type MockCompleter struct {
	Responses []string
	Err       error
	Prompts   []string
}

// Complete implements Completer
func (m *MockCompleter) Complete(_ context.Context, prompt string) (*Result, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Responses) == 0 {
		return &Result{}, nil
	}

	idx := len(m.Prompts) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}

	content := m.Responses[idx]
	return &Result{
		Content:          content,
		CompletionTokens: len(content) / 4,
		TotalTokens:      (len(prompt) + len(content)) / 4,
	}, nil
}
