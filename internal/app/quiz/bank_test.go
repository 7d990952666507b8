package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBank_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":        "questions: []",
		"unknown id":   "questions:\n  - id: guessShoeSize\n",
		"display name": "questions:\n  - id: girlfriendName\n",
		"duplicate":    "questions:\n  - id: guessAge\n  - id: guessAge\n",
		"bad yaml":     "questions: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseBank([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseBank_Embedded(t *testing.T) {
	qs, err := parseBank(bankYAML)
	require.NoError(t, err)
	assert.Len(t, qs, 12)
}
