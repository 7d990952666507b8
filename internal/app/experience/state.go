// Package experience drives one visitor through the proposal:
// intro, quiz, score, suspense, proposal and success.
package experience

import (
	"errors"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

type State string

const (
	StateIntro    State = "INTRO"
	StateFAQ      State = "FAQ"
	StateScore    State = "SCORE"
	StateSuspense State = "SUSPENSE"
	StateProposal State = "PROPOSAL"
	StateSuccess  State = "SUCCESS"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSuccess
}

type ActionKind string

const (
	ActionStart    ActionKind = "start"
	ActionAnswer   ActionKind = "answer"
	ActionNext     ActionKind = "next"
	ActionBack     ActionKind = "back"
	ActionSubmit   ActionKind = "submit"
	ActionContinue ActionKind = "continue"
	ActionAccept   ActionKind = "accept"

	// ActionSuspenseElapsed is fired by the suspense timer only.
	ActionSuspenseElapsed ActionKind = "suspense_elapsed"
)

// Action is a user intent. Field and Value are only used by ActionAnswer.
type Action struct {
	Kind  ActionKind
	Field string
	Value string
}

var (
	// ErrInvalidTransition is returned for an action the current state does not accept.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrFlowClosed is returned by a flow (or service) after Close.
	ErrFlowClosed = errors.New("experience closed")
)

// Snapshot is the whole state of one experience.
type Snapshot struct {
	State         State
	QuestionIndex int
	Answers       domain.QuizAnswers
	Score         domain.Score
	Message       string
	MessageReady  bool
	EnteredAt     time.Time
}

// NewSnapshot returns the initial INTRO snapshot. girlfriendName is the fixed display name.
func NewSnapshot(girlfriendName string, now time.Time) Snapshot {
	return Snapshot{
		State:     StateIntro,
		Answers:   domain.QuizAnswers{GirlfriendName: girlfriendName},
		EnteredAt: now,
	}
}

type EffectKind string

const (
	// EffectTrack records Event with Payload.
	EffectTrack EffectKind = "track"
	// EffectSaveResponse appends Answers to the quiz response log.
	EffectSaveResponse EffectKind = "save_response"
	// EffectScheduleSuspense arms the suspense timer.
	EffectScheduleSuspense EffectKind = "schedule_suspense"
	// EffectGenerateMessage starts the poem generation for Answers.
	EffectGenerateMessage EffectKind = "generate_message"
)

// Effect is a side effect requested by a transition.
type Effect struct {
	Kind    EffectKind
	Event   string
	Payload map[string]any
	Answers domain.QuizAnswers
}
