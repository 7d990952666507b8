// Package quiz holds the fixed question bank and the scoring rule.
package quiz

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

//go:embed questions.yaml
var bankYAML []byte

// Question is one step of the FAQ.
type Question struct {
	ID          string   `yaml:"id" json:"id"`
	Label       string   `yaml:"label" json:"label"`
	Type        string   `yaml:"type" json:"type"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
	Emoji       string   `yaml:"emoji" json:"emoji"`

	// Answer is the expected value; empty for questions that are not scored.
	Answer string `yaml:"answer,omitempty" json:"-"`
}

type bank struct {
	Questions []Question `yaml:"questions"`
}

var (
	questions []Question
	answerKey map[string]string
	keyOrder  []string
)

func init() {
	qs, err := parseBank(bankYAML)
	if err != nil {
		panic(err)
	}
	questions = qs
	answerKey = make(map[string]string)
	for _, q := range qs {
		if q.Answer != "" {
			answerKey[q.ID] = q.Answer
			keyOrder = append(keyOrder, q.ID)
		}
	}
}

func parseBank(data []byte) ([]Question, error) {
	var b bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("quiz: parse question bank: %w", err)
	}
	if len(b.Questions) == 0 {
		return nil, fmt.Errorf("quiz: question bank is empty")
	}

	seen := make(map[string]bool, len(b.Questions))
	var probe domain.QuizAnswers
	for _, q := range b.Questions {
		if q.ID == domain.FieldGirlfriendName || !probe.Set(q.ID, "") {
			return nil, fmt.Errorf("quiz: question %q is not an answerable field", q.ID)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("quiz: duplicate question %q", q.ID)
		}
		seen[q.ID] = true
	}
	return b.Questions, nil
}

// Questions returns a copy of the ordered question list.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Len is the number of questions.
func Len() int {
	return len(questions)
}

// QuestionAt returns the question at index i.
func QuestionAt(i int) (Question, bool) {
	if i < 0 || i >= len(questions) {
		return Question{}, false
	}
	return questions[i], true
}

// IsKnownField reports whether id is one of the questions.
func IsKnownField(id string) bool {
	for _, q := range questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// IsScorable reports whether id is part of the answer key.
func IsScorable(id string) bool {
	_, ok := answerKey[id]
	return ok
}

// ScorableFields returns the answer key's field ids in question order.
func ScorableFields() []string {
	out := make([]string, len(keyOrder))
	copy(out, keyOrder)
	return out
}

// Score compares the keyed fields against the answer key.
// Submitted values are trimmed and case-folded; matching is exact.
// Fields outside the key never affect the result.
func Score(answers domain.QuizAnswers) domain.Score {
	matches := 0
	for _, id := range keyOrder {
		got := strings.ToLower(strings.TrimSpace(answers.Get(id)))
		if got != "" && got == strings.ToLower(answerKey[id]) {
			matches++
		}
	}

	total := len(keyOrder)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(matches) / float64(total) * 100))
	}

	return domain.Score{
		Percentage: pct,
		Matches:    matches,
		Scorable:   total,
	}
}

// Verdict names the tier shown on the score page.
type Verdict string

const (
	VerdictSoulmate Verdict = "soulmate"
	VerdictClose    Verdict = "close"
	VerdictLearning Verdict = "learning"
)

func VerdictFor(percentage int) Verdict {
	switch {
	case percentage == 100:
		return VerdictSoulmate
	case percentage >= 80:
		return VerdictClose
	default:
		return VerdictLearning
	}
}
