package task

import (
	"fmt"
	"strings"
)

// Vibe is the mood a task is set up under. It drives theming and the
// intensity label recorded with a finished session.
type Vibe string

const (
	Calm      Vibe = "Calm"
	Focus     Vibe = "Focus"
	Creative  Vibe = "Creative"
	Energetic Vibe = "Energetic"
)

// DefaultVibe is applied to fresh drafts.
const DefaultVibe = Calm

// Vibes lists the vibes in display order.
func Vibes() []Vibe {
	return []Vibe{Calm, Focus, Creative, Energetic}
}

// ParseVibe matches s case-insensitively against the known vibes.
func ParseVibe(s string) (Vibe, error) {
	for _, v := range Vibes() {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown vibe %q", s)
}

// Intensity is the lowercased label stored on session records.
func (v Vibe) Intensity() string {
	return strings.ToLower(string(v))
}

// Next cycles to the following vibe, wrapping around.
func (v Vibe) Next() Vibe {
	all := Vibes()
	for i, candidate := range all {
		if candidate == v {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultVibe
}

// Prev cycles to the preceding vibe, wrapping around.
func (v Vibe) Prev() Vibe {
	all := Vibes()
	for i, candidate := range all {
		if candidate == v {
			return all[(i+len(all)-1)%len(all)]
		}
	}
	return DefaultVibe
}
