package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

// DepthStep selects Depth once at least MinEmpty cells are empty.
type DepthStep struct {
	MinEmpty int `json:"min_empty" yaml:"min_empty"`
	Depth    int `json:"depth" yaml:"depth"`
}

type Opening string

const (
	OpeningCorner Opening = "corner"
	OpeningCenter Opening = "center"
	OpeningEdge   Opening = "edge"
)

// Coord is the first placement this opening plays on an n×n board.
func (o Opening) Coord(n int) board.Coord {
	switch o {
	case OpeningCenter:
		return board.Coord{R: n / 2, Q: n / 2}
	case OpeningEdge:
		return board.Coord{R: 0, Q: n / 2}
	default:
		return board.Coord{R: 0, Q: 0}
	}
}

func ParseOpening(raw string) (Opening, error) {
	switch o := Opening(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return OpeningCorner, nil
	case OpeningCorner, OpeningCenter, OpeningEdge:
		return o, nil
	default:
		return "", fmt.Errorf("unknown opening %q", raw)
	}
}

type Settings struct {
	MaxDepth      int
	DepthSchedule []DepthStep
	// LowTimeThreshold clamps the search to depth 1 once the game budget left
	// drops below it.
	LowTimeThreshold time.Duration
	// MoveTimeFraction is the share of the remaining game budget one decision
	// may spend. Zero or less allows the whole remainder.
	MoveTimeFraction float64
	// ReturnLastCompleteDepth discards an iteration interrupted by the
	// deadline in favour of the last one that finished.
	ReturnLastCompleteDepth bool
	Opening                 Opening
	Steal                   bool
}

func DefaultSettings() Settings {
	return Settings{
		MaxDepth: 4,
		DepthSchedule: []DepthStep{
			{MinEmpty: 100, Depth: 2},
			{MinEmpty: 40, Depth: 3},
			{MinEmpty: 0, Depth: 4},
		},
		LowTimeThreshold:        2 * time.Second,
		MoveTimeFraction:        0.1,
		ReturnLastCompleteDepth: true,
		Opening:                 OpeningCorner,
		Steal:                   true,
	}
}

// DepthFor resolves the target depth for a position with empty free cells.
func (s Settings) DepthFor(empty int, remaining time.Duration) int {
	if remaining < s.LowTimeThreshold {
		return 1
	}
	steps := append([]DepthStep(nil), s.DepthSchedule...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].MinEmpty > steps[j].MinEmpty })
	depth := 1
	for _, step := range steps {
		if empty >= step.MinEmpty {
			depth = step.Depth
			break
		}
	}
	if s.MaxDepth > 0 && depth > s.MaxDepth {
		depth = s.MaxDepth
	}
	if depth > empty {
		depth = empty
	}
	if depth < 1 {
		depth = 1
	}
	return depth
}

// allowance is the wall time one decision may use.
func (s Settings) allowance(remaining time.Duration) time.Duration {
	if s.MoveTimeFraction <= 0 || s.MoveTimeFraction >= 1 {
		return remaining
	}
	return time.Duration(float64(remaining) * s.MoveTimeFraction)
}
