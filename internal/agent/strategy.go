package agent

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrNoMoves         = errors.New("no empty cell left")
)

type Strategy string

const (
	StrategyMinimax      Strategy = "minimax"
	StrategyFirstEmpty   Strategy = "first-empty"
	StrategyRandom       Strategy = "random"
	StrategyStraightLine Strategy = "straight-line"
)

var strategies = []Strategy{StrategyMinimax, StrategyFirstEmpty, StrategyRandom, StrategyStraightLine}

func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StrategyMinimax, nil
	}
	for _, known := range strategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
}

func StrategyNames() []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = string(s)
	}
	return out
}

// firstEmpty scans row-major.
func firstEmpty(b *board.Board) (board.Coord, bool) {
	n := b.Size()
	for r := 0; r < n; r++ {
		for q := 0; q < n; q++ {
			c := board.Coord{R: r, Q: q}
			if !b.IsOccupied(c) {
				return c, true
			}
		}
	}
	return board.Coord{}, false
}

// straightLine fills along the player's own axis: Blue scans rows, Red
// scans columns.
func straightLine(b *board.Board, color board.Color) (board.Coord, bool) {
	if color == board.Blue {
		return firstEmpty(b)
	}
	n := b.Size()
	for q := 0; q < n; q++ {
		for r := 0; r < n; r++ {
			c := board.Coord{R: r, Q: q}
			if !b.IsOccupied(c) {
				return c, true
			}
		}
	}
	return board.Coord{}, false
}

func randomEmpty(b *board.Board, rng *rand.Rand) (board.Coord, bool) {
	empties := b.Empties(nil)
	if len(empties) == 0 {
		return board.Coord{}, false
	}
	return empties[rng.Intn(len(empties))], true
}
