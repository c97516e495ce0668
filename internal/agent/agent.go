// Package agent adapts the search engine to the per-turn player protocol: the
// referee asks for an action, then reports every confirmed action back.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

// Player is what a referee drives.
type Player interface {
	Color() board.Color
	ChooseAction(ctx context.Context) (board.Action, error)
	// ObserveAction receives every validated action, including the
	// player's own.
	ObserveAction(color board.Color, a board.Action) error
}

type Options struct {
	Strategy Strategy
	Settings search.Settings
	Weights  eval.Weights
	// Budget is the wall time for the whole game; zero means n² seconds.
	Budget  time.Duration
	Seed    int64
	Logger  *slog.Logger
	Metrics *search.Metrics
}

func DefaultOptions() Options {
	return Options{
		Strategy: StrategyMinimax,
		Settings: search.DefaultSettings(),
		Weights:  eval.DefaultWeights(),
	}
}

// Agent owns a private board mirroring the game.
type Agent struct {
	color    board.Color
	strategy Strategy
	board    *board.Board
	engine   *search.Engine
	clock    *search.Clock
	rng      *rand.Rand
	logger   *slog.Logger
	last     search.Result
}

func New(color board.Color, n int, opts Options) (*Agent, error) {
	if !color.IsPlayer() {
		return nil, board.ErrInvalidColor
	}
	if n < 1 {
		return nil, fmt.Errorf("invalid board size %d", n)
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyMinimax
	}
	if _, err := ParseStrategy(string(opts.Strategy)); err != nil {
		return nil, err
	}
	if opts.Weights.IsZero() {
		opts.Weights = eval.DefaultWeights()
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = search.GameBudget(n)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("color", color.String(), "strategy", string(opts.Strategy))
	a := &Agent{
		color:    color,
		strategy: opts.Strategy,
		board:    board.New(n),
		clock:    search.NewClock(budget),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		logger:   logger,
	}
	if opts.Strategy == StrategyMinimax {
		a.engine = search.NewEngine(opts.Settings, opts.Weights,
			search.WithLogger(logger), search.WithMetrics(opts.Metrics))
	}
	return a, nil
}

func (a *Agent) Color() board.Color {
	return a.color
}

func (a *Agent) Strategy() Strategy {
	return a.strategy
}

// Board exposes the agent's mirror of the game for inspection.
func (a *Agent) Board() *board.Board {
	return a.board
}

func (a *Agent) Clock() *search.Clock {
	return a.clock
}

// LastResult is the most recent search outcome; zero for other strategies.
func (a *Agent) LastResult() search.Result {
	return a.last
}

// SearchDepth is the completed depth of the last search.
func (a *Agent) SearchDepth() int {
	return a.last.Stats.CompletedDepth
}

func (a *Agent) ChooseAction(ctx context.Context) (board.Action, error) {
	start := time.Now()
	action, err := a.choose(ctx)
	a.clock.Charge(time.Since(start))
	return action, err
}

func (a *Agent) choose(ctx context.Context) (board.Action, error) {
	var (
		c  board.Coord
		ok bool
	)
	switch a.strategy {
	case StrategyMinimax:
		res, found := a.engine.Choose(ctx, a.board, a.color, a.clock.Remaining())
		if !found {
			return board.Action{}, ErrNoMoves
		}
		a.last = res
		return res.Action, nil
	case StrategyFirstEmpty:
		c, ok = firstEmpty(a.board)
	case StrategyRandom:
		c, ok = randomEmpty(a.board, a.rng)
	case StrategyStraightLine:
		c, ok = straightLine(a.board, a.color)
	default:
		return board.Action{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, a.strategy)
	}
	if !ok {
		return board.Action{}, ErrNoMoves
	}
	return board.PlaceAt(c), nil
}

func (a *Agent) ObserveAction(color board.Color, action board.Action) error {
	if err := a.board.Check(color, action); err != nil {
		return fmt.Errorf("observe %s by %s: %w", action, color, err)
	}
	a.board.Apply(color, action)
	return nil
}
