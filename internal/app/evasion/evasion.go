// Package evasion computes where the "No" button runs to when it is approached.
// It is presentation only: moving the button never changes the experience state.
package evasion

import "math/rand/v2"

const (
	// Padding keeps the button this many pixels away from every viewport edge.
	Padding = 100
	// ScaleStep is how much the "Yes" button grows on every evasion.
	ScaleStep = 0.15
	// MaxScale caps the "Yes" button growth.
	MaxScale = 3.0
)

type Viewport struct {
	Width  int `json:"viewport_width"`
	Height int `json:"viewport_height"`
}

type Move struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Scale float64 `json:"scale"`
}

// Rand is the randomness source; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Next returns a new position inside the padded viewport and the grown accept scale.
// A viewport smaller than twice the padding pins the button to the padding corner.
func Next(vp Viewport, scale float64, rnd Rand) Move {
	if rnd == nil {
		rnd = defaultRand{}
	}
	return Move{
		X:     Padding + span(vp.Width, rnd),
		Y:     Padding + span(vp.Height, rnd),
		Scale: grow(scale),
	}
}

func span(size int, rnd Rand) int {
	room := size - 2*Padding
	if room <= 0 {
		return 0
	}
	return rnd.IntN(room + 1)
}

func grow(scale float64) float64 {
	if scale < 1 {
		scale = 1
	}
	scale += ScaleStep
	if scale > MaxScale {
		scale = MaxScale
	}
	return scale
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }
