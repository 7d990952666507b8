package experience_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/valentine-quest/internal/app/experience"
	"github.com/PabloGalante/valentine-quest/internal/app/quiz"
	"github.com/PabloGalante/valentine-quest/internal/domain"
)

var t0 = time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC)

var canonical = map[string]string{
	domain.FieldGuessName:        "Pankaj",
	domain.FieldGuessAge:         "22",
	domain.FieldGuessColor:       "Black",
	domain.FieldGuessCricketer:   "Rohit Sharma",
	domain.FieldGuessFruit:       "Grapes",
	domain.FieldGuessPerson:      "You <3",
	domain.FieldGuessLocation:    "Greater Noida",
	domain.FieldGuessDish:        "Momos",
	domain.FieldGuessCity:        "Banaras",
	domain.FieldGuessFestival:    "Holi",
	domain.FieldGuessDestination: "Mathura",
	domain.FieldAboutMe:          "you are my favourite person",
}

func step(t *testing.T, s experience.Snapshot, a experience.Action) (experience.Snapshot, []experience.Effect) {
	t.Helper()
	next, effects, err := experience.Transition(s, a, t0)
	require.NoError(t, err, "action %s in %s", a.Kind, s.State)
	return next, effects
}

// answerAll walks the whole FAQ with the given answers and stops on the last question.
func answerAll(t *testing.T, s experience.Snapshot, answers map[string]string) experience.Snapshot {
	t.Helper()
	for i, q := range quiz.Questions() {
		s, _ = step(t, s, experience.Action{Kind: experience.ActionAnswer, Field: q.ID, Value: answers[q.ID]})
		if i < quiz.Len()-1 {
			s, _ = step(t, s, experience.Action{Kind: experience.ActionNext})
		}
	}
	return s
}

func eventNames(effects []experience.Effect) []string {
	var out []string
	for _, e := range effects {
		if e.Kind == experience.EffectTrack {
			out = append(out, e.Event)
		}
	}
	return out
}

func TestTransition_HappyPath(t *testing.T) {
	s := experience.NewSnapshot("Khushbooo", t0)
	require.Equal(t, experience.StateIntro, s.State)

	s, effects := step(t, s, experience.Action{Kind: experience.ActionStart})
	assert.Equal(t, experience.StateFAQ, s.State)
	assert.Equal(t, []string{"button_click", "page_view"}, eventNames(effects))
	assert.Equal(t, map[string]any{"id": "start_journey"}, effects[0].Payload)

	s = answerAll(t, s, canonical)
	s, effects = step(t, s, experience.Action{Kind: experience.ActionSubmit})
	assert.Equal(t, experience.StateScore, s.State)
	assert.Equal(t, 100, s.Score.Percentage)
	assert.Equal(t, "Khushbooo", s.Answers.GirlfriendName)

	require.Equal(t, experience.EffectSaveResponse, effects[1].Kind)
	names := eventNames(effects)
	assert.Equal(t, "button_click", names[0])
	assert.Equal(t, "page_view", names[len(names)-1])
	faq := 0
	for _, e := range effects {
		if e.Event == "faq_answer" {
			faq++
			assert.NotEqual(t, domain.FieldGirlfriendName, e.Payload["field"])
		}
	}
	assert.Equal(t, quiz.Len(), faq)

	s, effects = step(t, s, experience.Action{Kind: experience.ActionContinue})
	assert.Equal(t, experience.StateSuspense, s.State)
	assert.Equal(t, experience.EffectScheduleSuspense, effects[0].Kind)

	s, _ = step(t, s, experience.Action{Kind: experience.ActionSuspenseElapsed})
	assert.Equal(t, experience.StateProposal, s.State)

	s, effects = step(t, s, experience.Action{Kind: experience.ActionAccept})
	assert.Equal(t, experience.StateSuccess, s.State)
	assert.False(t, s.MessageReady)
	assert.Equal(t, []string{"button_click", "proposal_accept", "poem_requested", "page_view"}, eventNames(effects))

	var gens int
	for _, e := range effects {
		if e.Kind == experience.EffectGenerateMessage {
			gens++
		}
	}
	assert.Equal(t, 1, gens)
}

func TestTransition_InvalidActionsLeaveStateUnchanged(t *testing.T) {
	intro := experience.NewSnapshot("Khushbooo", t0)

	tests := []struct {
		name string
		s    experience.Snapshot
		a    experience.Action
	}{
		{"answer before start", intro, experience.Action{Kind: experience.ActionAnswer, Field: domain.FieldGuessAge, Value: "22"}},
		{"submit before start", intro, experience.Action{Kind: experience.ActionSubmit}},
		{"accept from intro", intro, experience.Action{Kind: experience.ActionAccept}},
		{"continue from intro", intro, experience.Action{Kind: experience.ActionContinue}},
		{"unknown action", intro, experience.Action{Kind: "dance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects, err := experience.Transition(tt.s, tt.a, t0)
			require.ErrorIs(t, err, experience.ErrInvalidTransition)
			assert.Equal(t, tt.s, next)
			assert.Empty(t, effects)
		})
	}
}

func TestTransition_FAQGates(t *testing.T) {
	s, _ := step(t, experience.NewSnapshot("Khushbooo", t0), experience.Action{Kind: experience.ActionStart})

	_, _, err := experience.Transition(s, experience.Action{Kind: experience.ActionNext}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation, "empty answer blocks next")

	_, _, err = experience.Transition(s, experience.Action{Kind: experience.ActionBack}, t0)
	assert.ErrorIs(t, err, experience.ErrInvalidTransition, "no back on first question")

	_, _, err = experience.Transition(s, experience.Action{Kind: experience.ActionSubmit}, t0)
	assert.ErrorIs(t, err, experience.ErrInvalidTransition, "submit only on last question")

	_, _, err = experience.Transition(s, experience.Action{Kind: experience.ActionAnswer, Field: domain.FieldGirlfriendName, Value: "x"}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation, "display name is not answerable")

	_, _, err = experience.Transition(s, experience.Action{Kind: experience.ActionAnswer, Field: "shoeSize", Value: "7"}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	s, _ = step(t, s, experience.Action{Kind: experience.ActionAnswer, Field: domain.FieldGuessName, Value: "   "})
	assert.False(t, experience.CanAdvance(s))
	s, _ = step(t, s, experience.Action{Kind: experience.ActionAnswer, Field: domain.FieldGuessName, Value: "Pankaj"})
	assert.True(t, experience.CanAdvance(s))

	s, _ = step(t, s, experience.Action{Kind: experience.ActionNext})
	assert.Equal(t, 1, s.QuestionIndex)
	s, _ = step(t, s, experience.Action{Kind: experience.ActionBack})
	assert.Equal(t, 0, s.QuestionIndex)
	assert.Equal(t, "Pankaj", s.Answers.GuessName, "back keeps answers")
}

func TestTransition_LastQuestionGates(t *testing.T) {
	s, _ := step(t, experience.NewSnapshot("Khushbooo", t0), experience.Action{Kind: experience.ActionStart})
	partial := make(map[string]string, len(canonical))
	for k, v := range canonical {
		partial[k] = v
	}
	partial[domain.FieldAboutMe] = ""

	// answerAll stops on the last question, which is left empty.
	s = answerAll(t, s, partial)
	require.Equal(t, quiz.Len()-1, s.QuestionIndex)

	_, _, err := experience.Transition(s, experience.Action{Kind: experience.ActionNext}, t0)
	assert.ErrorIs(t, err, experience.ErrInvalidTransition)

	_, _, err = experience.Transition(s, experience.Action{Kind: experience.ActionSubmit}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransition_ScoreScenarios(t *testing.T) {
	seven := map[string]string{domain.FieldGuessName: "x", domain.FieldAboutMe: "y"}
	for i, id := range quiz.ScorableFields() {
		if i < 7 {
			seven[id] = "  " + canonical[id] + " "
		} else {
			seven[id] = "wrong"
		}
	}

	wrong := map[string]string{}
	for _, q := range quiz.Questions() {
		wrong[q.ID] = "nope"
	}

	tests := []struct {
		name    string
		answers map[string]string
		want    int
	}{
		{"canonical", canonical, 100},
		{"seven of ten", seven, 70},
		{"all wrong", wrong, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := step(t, experience.NewSnapshot("Khushbooo", t0), experience.Action{Kind: experience.ActionStart})
			s = answerAll(t, s, tt.answers)
			s, _ = step(t, s, experience.Action{Kind: experience.ActionSubmit})
			assert.Equal(t, tt.want, s.Score.Percentage)
		})
	}
}

func TestTransition_SuspenseElapsedOnlyInSuspense(t *testing.T) {
	intro := experience.NewSnapshot("Khushbooo", t0)
	next, effects, err := experience.Transition(intro, experience.Action{Kind: experience.ActionSuspenseElapsed}, t0)
	require.NoError(t, err)
	assert.Equal(t, intro, next)
	assert.Empty(t, effects)
}

func TestTransition_SuccessIsFinal(t *testing.T) {
	s := experience.Snapshot{State: experience.StateSuccess}
	for _, k := range []experience.ActionKind{
		experience.ActionStart, experience.ActionAccept, experience.ActionSuspenseElapsed, experience.ActionBack,
	} {
		next, _, err := experience.Transition(s, experience.Action{Kind: k}, t0)
		assert.ErrorIs(t, err, experience.ErrInvalidTransition)
		assert.Equal(t, s, next)
	}
}

func TestSuspenseText(t *testing.T) {
	assert.Equal(t, "Preparing something special...", experience.SuspenseText(0))
	assert.Equal(t, "Preparing something special...", experience.SuspenseText(999*time.Millisecond))
	assert.Contains(t, experience.SuspenseText(time.Second), "stars")
	assert.Contains(t, experience.SuspenseText(2500*time.Millisecond), "cats")
	assert.Contains(t, experience.SuspenseText(3*time.Second), "love in the universe")
	assert.Contains(t, experience.SuspenseText(4*time.Second), "princess")
	assert.Contains(t, experience.SuspenseText(time.Minute), "princess")
}
