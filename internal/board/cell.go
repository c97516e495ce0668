package board

import (
	"fmt"
	"strings"
)

// Color is the content of a cell and doubles as the player identity.
type Color int8

const (
	Empty Color = iota
	Red
	Blue
)

// Opponent returns the other player. Empty maps to Empty.
func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return Empty
	}
}

// IsPlayer reports whether c is Red or Blue.
func (c Color) IsPlayer() bool {
	return c == Red || c == Blue
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "empty"
	}
}

// ParseColor accepts "r", "red", "b" and "blue" in any case.
func ParseColor(raw string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "r", "red":
		return Red, nil
	case "b", "blue":
		return Blue, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownColor, raw)
	}
}

// MarshalText lets colours travel as "red"/"blue" in JSON and YAML.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), "empty") || len(text) == 0 {
		*c = Empty
		return nil
	}
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
