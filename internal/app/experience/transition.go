package experience

import (
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/app/quiz"
	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/domain"
)

// Transition applies a to s. It has no side effects: everything that must happen
// outside the snapshot is returned as effects, in execution order.
// On error the returned snapshot is s unchanged.
//
// ActionSuspenseElapsed outside SUSPENSE is ignored, not an error: the timer may
// race with teardown.
func Transition(s Snapshot, a Action, now time.Time) (Snapshot, []Effect, error) {
	if s.State.Terminal() {
		return s, nil, fmt.Errorf("%w: %s is final", ErrInvalidTransition, s.State)
	}

	var (
		next    = s
		effects []Effect
	)

	switch {
	case s.State == StateIntro && a.Kind == ActionStart:
		next.State = StateFAQ
		next.QuestionIndex = 0
		effects = append(effects, click("start_journey"))

	case s.State == StateFAQ && a.Kind == ActionAnswer:
		if !quiz.IsKnownField(a.Field) {
			return s, nil, fmt.Errorf("%w: unknown field %q", domain.ErrValidation, a.Field)
		}
		next.Answers.Set(a.Field, a.Value)
		return next, nil, nil

	case s.State == StateFAQ && a.Kind == ActionNext:
		if s.QuestionIndex >= quiz.Len()-1 {
			return s, nil, fmt.Errorf("%w: next on the last question", ErrInvalidTransition)
		}
		if err := requireCurrentAnswer(s); err != nil {
			return s, nil, err
		}
		next.QuestionIndex++
		return next, nil, nil

	case s.State == StateFAQ && a.Kind == ActionBack:
		if s.QuestionIndex == 0 {
			return s, nil, fmt.Errorf("%w: back on the first question", ErrInvalidTransition)
		}
		next.QuestionIndex--
		return next, nil, nil

	case s.State == StateFAQ && a.Kind == ActionSubmit:
		if s.QuestionIndex != quiz.Len()-1 {
			return s, nil, fmt.Errorf("%w: submit before the last question", ErrInvalidTransition)
		}
		if err := requireCurrentAnswer(s); err != nil {
			return s, nil, err
		}
		next.State = StateScore
		next.Score = quiz.Score(s.Answers)
		effects = append(effects,
			click("faq_submit"),
			Effect{Kind: EffectSaveResponse, Answers: s.Answers},
		)
		for _, q := range quiz.Questions() {
			effects = append(effects, track(tracking.EventFAQAnswer, map[string]any{
				"field": q.ID,
				"value": s.Answers.Get(q.ID),
			}))
		}

	case s.State == StateScore && a.Kind == ActionContinue:
		next.State = StateSuspense
		effects = append(effects, Effect{Kind: EffectScheduleSuspense})

	case a.Kind == ActionSuspenseElapsed:
		if s.State != StateSuspense {
			return s, nil, nil
		}
		next.State = StateProposal

	case s.State == StateProposal && a.Kind == ActionAccept:
		next.State = StateSuccess
		next.Message = ""
		next.MessageReady = false
		effects = append(effects,
			click("proposal_yes"),
			track(tracking.EventProposalAccept, nil),
			track(tracking.EventPoemRequested, map[string]any{"data": s.Answers.Map()}),
			Effect{Kind: EffectGenerateMessage, Answers: s.Answers},
		)

	default:
		return s, nil, fmt.Errorf("%w: %s does not accept %q", ErrInvalidTransition, s.State, a.Kind)
	}

	next.EnteredAt = now
	effects = append(effects, track(tracking.EventPageView, map[string]any{"page": string(next.State)}))
	return next, effects, nil
}

// CanAdvance reports whether next/submit would pass the answer gate.
func CanAdvance(s Snapshot) bool {
	return s.State == StateFAQ && requireCurrentAnswer(s) == nil
}

func requireCurrentAnswer(s Snapshot) error {
	q, ok := quiz.QuestionAt(s.QuestionIndex)
	if !ok {
		return fmt.Errorf("%w: no question at %d", ErrInvalidTransition, s.QuestionIndex)
	}
	if strings.TrimSpace(s.Answers.Get(q.ID)) == "" {
		return fmt.Errorf("%w: %s needs an answer", domain.ErrValidation, q.ID)
	}
	return nil
}

func track(event string, payload map[string]any) Effect {
	return Effect{Kind: EffectTrack, Event: event, Payload: payload}
}

func click(id string) Effect {
	return track(tracking.EventButtonClick, map[string]any{"id": id})
}
