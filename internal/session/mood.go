package session

import (
	"errors"
	"fmt"
)

// Mood sets how strongly the particle halos glow.
type Mood string

const (
	Silencio    Mood = "silencio"
	Fluxo       Mood = "fluxo"
	Intensidade Mood = "intensidade"
)

// Moods lists the moods in cycling order.
var Moods = []Mood{Silencio, Fluxo, Intensidade}

var ErrUnknownMood = errors.New("unknown mood")

func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// HaloGain is the multiplier applied to the configured halo alpha.
func (m Mood) HaloGain() float64 {
	switch m {
	case Silencio:
		return 0.5
	case Fluxo:
		return 0.8
	default:
		return 1
	}
}

// Next returns the mood after m, wrapping around.
func (m Mood) Next() Mood {
	for i, x := range Moods {
		if x == m {
			return Moods[(i+1)%len(Moods)]
		}
	}
	return Moods[0]
}
