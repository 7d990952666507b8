package llm

import (
	"context"
	"strings"
)

// MockLLM answers with a canned poem. Used in local mode.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := []string{
		"Roses are red, tumhari smile is my sunshine ☀️",
		"Every answer you gave, dil ko aur paas laaya 💖",
		"From chai at dawn to stars at night,",
		"With you, my love, everything feels right ✨",
		"Will you be mine, today and always? 💍",
	}
	if strings.TrimSpace(prompt) == "" {
		lines = lines[len(lines)-1:]
	}
	return strings.Join(lines, "\n"), nil
}
