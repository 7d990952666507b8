package llm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/valentine-quest/internal/adapters/llm"
	"github.com/PabloGalante/valentine-quest/internal/domain"
)

func TestBuildProposalPrompt(t *testing.T) {
	p := llm.BuildProposalPrompt(domain.QuizAnswers{
		GirlfriendName: "Khushbooo",
		GuessName:      "Pankaj",
		GuessCity:      "Banaras",
		AboutMe:        "you make me laugh",
		GuessAge:       "22",
	}, "Pankaj")

	assert.Contains(t, p, "for Khushbooo from Pankaj")
	assert.Contains(t, p, `"Pankaj"`)
	assert.Contains(t, p, "favourite city: Banaras")
	assert.Contains(t, p, "you make me laugh")
	assert.NotContains(t, p, "22")
}

func TestBuildProposalPrompt_EmptyAnswers(t *testing.T) {
	p := llm.BuildProposalPrompt(domain.QuizAnswers{}, "")

	assert.Contains(t, p, "for my love from me")
	assert.NotContains(t, p, "Her answers")
	assert.NotContains(t, p, "She wrote")
}

func TestMockLLM(t *testing.T) {
	m := llm.NewMockLLM()

	text, err := m.GenerateText(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Greater(t, len(strings.Split(text, "\n")), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.GenerateText(ctx, "a prompt")
	assert.Error(t, err)
}

func TestNewGeminiClient_RequiresCredentials(t *testing.T) {
	_, err := llm.NewGeminiClient(context.Background(), llm.GeminiConfig{})
	assert.Error(t, err)
}
