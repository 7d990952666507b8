package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

const systemPrompt = `
You write short love poems for a Valentine's proposal web page.

Style guidelines:
- Warm, playful and a little emotional.
- Hinglish is welcome; a few emojis are welcome.
- 10 to 12 short lines, one line per verse.
- No titles, no markdown, no explanations: only the poem.
`

// BuildProposalPrompt builds the user prompt from a subset of the quiz answers.
// sender is the person proposing.
func BuildProposalPrompt(answers domain.QuizAnswers, sender string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a short, incredibly sweet and cute romantic poem for %s from %s.\n",
		nonEmpty(answers.GirlfriendName, "my love"), nonEmpty(sender, "me"))

	if name := strings.TrimSpace(answers.GuessName); name != "" {
		fmt.Fprintf(&b, "She guessed my name is %q; mention it playfully.\n", name)
	}

	var favourites []string
	for _, f := range []struct{ label, value string }{
		{"favourite person", answers.GuessPerson},
		{"favourite city", answers.GuessCity},
		{"dream trip together", answers.GuessDestination},
		{"favourite festival", answers.GuessFestival},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			favourites = append(favourites, fmt.Sprintf("%s: %s", f.label, v))
		}
	}
	if len(favourites) > 0 {
		fmt.Fprintf(&b, "Her answers about me: %s.\n", strings.Join(favourites, "; "))
	}

	if about := strings.TrimSpace(answers.AboutMe); about != "" {
		fmt.Fprintf(&b, "She wrote this about me: %q.\n", about)
	}

	b.WriteString("Propose to her in a sweet and loving manner. Keep it to about 10-12 lines.")
	return b.String()
}

func nonEmpty(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
