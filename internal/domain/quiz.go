package domain

// Quiz field ids, in question order.
const (
	FieldGirlfriendName   = "girlfriendName"
	FieldGuessName        = "guessName"
	FieldGuessAge         = "guessAge"
	FieldGuessColor       = "guessColor"
	FieldGuessCricketer   = "guessCricketer"
	FieldGuessFruit       = "guessFruit"
	FieldGuessPerson      = "guessPerson"
	FieldGuessLocation    = "guessLocation"
	FieldGuessDish        = "guessDish"
	FieldGuessCity        = "guessCity"
	FieldGuessFestival    = "guessFestival"
	FieldGuessDestination = "guessDestination"
	FieldAboutMe          = "aboutMe"
)

// QuizAnswers is the answer set collected during the FAQ step.
// GirlfriendName is a fixed display string, never answered by the user.
type QuizAnswers struct {
	GirlfriendName   string `json:"girlfriendName"`
	GuessName        string `json:"guessName"`
	GuessAge         string `json:"guessAge"`
	GuessColor       string `json:"guessColor"`
	GuessCricketer   string `json:"guessCricketer"`
	GuessFruit       string `json:"guessFruit"`
	GuessPerson      string `json:"guessPerson"`
	GuessLocation    string `json:"guessLocation"`
	GuessDish        string `json:"guessDish"`
	GuessCity        string `json:"guessCity"`
	GuessFestival    string `json:"guessFestival"`
	GuessDestination string `json:"guessDestination"`
	AboutMe          string `json:"aboutMe"`
}

func (a *QuizAnswers) field(id string) *string {
	switch id {
	case FieldGirlfriendName:
		return &a.GirlfriendName
	case FieldGuessName:
		return &a.GuessName
	case FieldGuessAge:
		return &a.GuessAge
	case FieldGuessColor:
		return &a.GuessColor
	case FieldGuessCricketer:
		return &a.GuessCricketer
	case FieldGuessFruit:
		return &a.GuessFruit
	case FieldGuessPerson:
		return &a.GuessPerson
	case FieldGuessLocation:
		return &a.GuessLocation
	case FieldGuessDish:
		return &a.GuessDish
	case FieldGuessCity:
		return &a.GuessCity
	case FieldGuessFestival:
		return &a.GuessFestival
	case FieldGuessDestination:
		return &a.GuessDestination
	case FieldAboutMe:
		return &a.AboutMe
	}
	return nil
}

// Get returns the value of a field, "" for unknown ids.
func (a QuizAnswers) Get(id string) string {
	if p := a.field(id); p != nil {
		return *p
	}
	return ""
}

// Set updates a field. It reports false for unknown ids.
func (a *QuizAnswers) Set(id, value string) bool {
	p := a.field(id)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Map flattens the answers into a field id → value map.
func (a QuizAnswers) Map() map[string]string {
	return map[string]string{
		FieldGirlfriendName:   a.GirlfriendName,
		FieldGuessName:        a.GuessName,
		FieldGuessAge:         a.GuessAge,
		FieldGuessColor:       a.GuessColor,
		FieldGuessCricketer:   a.GuessCricketer,
		FieldGuessFruit:       a.GuessFruit,
		FieldGuessPerson:      a.GuessPerson,
		FieldGuessLocation:    a.GuessLocation,
		FieldGuessDish:        a.GuessDish,
		FieldGuessCity:        a.GuessCity,
		FieldGuessFestival:    a.GuessFestival,
		FieldGuessDestination: a.GuessDestination,
		FieldAboutMe:          a.AboutMe,
	}
}

// Score is the match percentage derived from the scorable fields.
type Score struct {
	Percentage int `json:"percentage"`
	Matches    int `json:"matches"`
	Scorable   int `json:"scorable"`
}
