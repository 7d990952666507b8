package experience

import (
	"time"

	"github.com/PabloGalante/valentine-quest/internal/app/message"
	"github.com/PabloGalante/valentine-quest/internal/app/quiz"
	"github.com/PabloGalante/valentine-quest/internal/domain"
)

const suspenseInitial = "Preparing something special..."

var suspenseTexts = []string{
	"Checking the alignment of the stars... ✨",
	"Consulting the council of cute cats... 🐱",
	"Gathering all the love in the universe... 💖",
	"Almost there, my princess... 👸",
}

// SuspenseText is the line shown elapsed into the suspense screen.
// One new line per second; the last one stays until the proposal.
func SuspenseText(elapsed time.Duration) string {
	step := int(elapsed / time.Second)
	if step <= 0 {
		return suspenseInitial
	}
	if step > len(suspenseTexts) {
		step = len(suspenseTexts)
	}
	return suspenseTexts[step-1]
}

// View is the client rendering of a snapshot.
type View struct {
	State         State              `json:"state"`
	QuestionIndex int                `json:"question_index"`
	QuestionTotal int                `json:"question_total"`
	Question      *quiz.Question     `json:"question,omitempty"`
	CanAdvance    bool               `json:"can_advance"`
	Answers       domain.QuizAnswers `json:"answers"`
	Score         *domain.Score      `json:"score,omitempty"`
	Verdict       quiz.Verdict       `json:"verdict,omitempty"`
	SuspenseText  string             `json:"suspense_text,omitempty"`
	MessageLines  []string           `json:"message_lines,omitempty"`
	Loading       bool               `json:"loading"`
}

func NewView(s Snapshot, now time.Time) View {
	v := View{
		State:         s.State,
		QuestionIndex: s.QuestionIndex,
		QuestionTotal: quiz.Len(),
		Answers:       s.Answers,
	}

	switch s.State {
	case StateFAQ:
		if q, ok := quiz.QuestionAt(s.QuestionIndex); ok {
			v.Question = &q
		}
		v.CanAdvance = CanAdvance(s)
	case StateScore, StateSuspense, StateProposal, StateSuccess:
		score := s.Score
		v.Score = &score
		v.Verdict = quiz.VerdictFor(score.Percentage)
	}

	if s.State == StateSuspense {
		v.SuspenseText = SuspenseText(now.Sub(s.EnteredAt))
	}
	if s.State == StateSuccess {
		v.Loading = !s.MessageReady
		if s.MessageReady {
			v.MessageLines = message.Lines(s.Message)
		}
	}
	return v
}
