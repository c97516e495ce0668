// Package referee runs a Cachex game between two players, validating every
// action against its own board and informing both players of the result.
package referee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/agent"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

const (
	DefaultMaxTurns    = 343
	DefaultRepeatLimit = 7
)

type EventKind string

const (
	EventStart EventKind = "start"
	EventMove  EventKind = "move"
	EventEnd   EventKind = "end"
)

type Event struct {
	Kind    EventKind     `json:"kind"`
	Size    int           `json:"size"`
	Entry   *HistoryEntry `json:"entry,omitempty"`
	Outcome *Outcome      `json:"outcome,omitempty"`
	// Board is a private copy taken when the event fired.
	Board *board.Board `json:"-"`
}

type Observer func(Event)

type Options struct {
	MaxTurns    int
	RepeatLimit int
	// Budget is each player's allowance for the game. It is only enforced
	// when EnforceTime is set; zero means n² seconds.
	Budget      time.Duration
	EnforceTime bool
	Observer    Observer
	Logger      *slog.Logger
	Metrics     *Metrics
}

func DefaultOptions() Options {
	return Options{MaxTurns: DefaultMaxTurns, RepeatLimit: DefaultRepeatLimit}
}

type Match struct {
	board   *board.Board
	players map[board.Color]agent.Player
	history History
	digests map[uint64]int
	elapsed map[board.Color]time.Duration
	opts    Options
	logger  *slog.Logger
	outcome Outcome
}

func NewMatch(n int, red, blue agent.Player, opts Options) (*Match, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid board size %d", n)
	}
	if red == nil || blue == nil {
		return nil, errors.New("both players are required")
	}
	if red.Color() != board.Red || blue.Color() != board.Blue {
		return nil, fmt.Errorf("players must be red then blue, got %s and %s", red.Color(), blue.Color())
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.RepeatLimit <= 0 {
		opts.RepeatLimit = DefaultRepeatLimit
	}
	if opts.Budget <= 0 {
		opts.Budget = time.Duration(n*n) * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Match{
		board:   board.New(n),
		players: map[board.Color]agent.Player{board.Red: red, board.Blue: blue},
		digests: make(map[uint64]int),
		elapsed: make(map[board.Color]time.Duration),
		opts:    opts,
		logger:  logger.With("component", "referee"),
		outcome: Outcome{Status: StatusRunning},
	}
	m.digests[m.board.Digest()] = 1
	return m, nil
}

func (m *Match) Board() *board.Board {
	return m.board
}

func (m *Match) History() History {
	return m.history
}

func (m *Match) Outcome() Outcome {
	return m.outcome
}

// Elapsed is the thinking time color has used so far.
func (m *Match) Elapsed(color board.Color) time.Duration {
	return m.elapsed[color]
}

// ToMove is the colour whose turn it is. Red moves on even turns.
func (m *Match) ToMove() board.Color {
	if m.board.TurnsTaken()%2 == 0 {
		return board.Red
	}
	return board.Blue
}

// Run plays until the game ends or ctx is cancelled.
func (m *Match) Run(ctx context.Context) Outcome {
	m.emit(Event{Kind: EventStart})
	m.logger.Info("match started", "size", m.board.Size())
	for !m.outcome.Finished() {
		m.Step(ctx)
	}
	return m.outcome
}

// Step plays one turn. It is a no-op once the match has finished.
func (m *Match) Step(ctx context.Context) Outcome {
	if m.outcome.Finished() {
		return m.outcome
	}
	if err := ctx.Err(); err != nil {
		return m.finish(Outcome{Status: StatusAborted, Reason: ReasonCancelled, Detail: err.Error()})
	}
	color := m.ToMove()
	player := m.players[color]
	turn := m.board.TurnsTaken()

	start := time.Now()
	action, err := player.ChooseAction(ctx)
	elapsed := time.Since(start)
	m.elapsed[color] += elapsed
	if err != nil {
		if ctx.Err() != nil {
			return m.finish(Outcome{Status: StatusAborted, Reason: ReasonCancelled, Detail: ctx.Err().Error()})
		}
		return m.forfeit(color, ReasonPlayerError, err)
	}
	if m.opts.EnforceTime && m.elapsed[color] > m.opts.Budget {
		return m.forfeit(color, ReasonTimeout, fmt.Errorf("%s used %s of %s", color, m.elapsed[color], m.opts.Budget))
	}
	if err := m.board.Check(color, action); err != nil {
		return m.forfeit(color, ReasonIllegalAction, fmt.Errorf("%w by %s: %s: %w", ErrIllegalAction, color, action, err))
	}

	rec := m.board.Apply(color, action)
	for _, c := range []board.Color{board.Red, board.Blue} {
		if err := m.players[c].ObserveAction(color, action); err != nil {
			return m.forfeit(c, ReasonPlayerError, err)
		}
	}
	entry := HistoryEntry{
		Turn:     turn,
		Color:    color,
		Action:   action,
		Captured: rec.Captured,
		Elapsed:  elapsed,
	}
	if d, ok := player.(interface{ SearchDepth() int }); ok {
		entry.Depth = d.SearchDepth()
	}
	m.history.Push(entry)
	m.logger.Debug("move played", "turn", turn, "color", color.String(), "action", action.String(),
		"captured", len(rec.Captured), "elapsed_ms", elapsed.Milliseconds())
	m.emit(Event{Kind: EventMove, Entry: &entry})

	turns := m.board.TurnsTaken()
	if !action.IsSteal() && m.board.WinFrom(action.Coord) {
		return m.finish(winOutcome(color, ReasonConnection, turns))
	}
	m.digests[m.board.Digest()]++
	if m.digests[m.board.Digest()] >= m.opts.RepeatLimit {
		return m.finish(Outcome{Status: StatusDraw, Reason: ReasonRepeatedState, Turns: turns})
	}
	if turns >= m.opts.MaxTurns {
		return m.finish(Outcome{Status: StatusDraw, Reason: ReasonMaxTurns, Turns: turns})
	}
	return m.outcome
}

func (m *Match) forfeit(loser board.Color, reason Reason, err error) Outcome {
	m.logger.Warn("player forfeits", "color", loser.String(), "reason", string(reason), "error", err)
	o := winOutcome(loser.Opponent(), reason, m.board.TurnsTaken())
	o.Detail = err.Error()
	return m.finish(o)
}

func (m *Match) finish(o Outcome) Outcome {
	if o.Turns == 0 {
		o.Turns = m.board.TurnsTaken()
	}
	m.outcome = o
	m.opts.Metrics.observe(o)
	m.logger.Info("match finished", "status", string(o.Status), "reason", string(o.Reason), "turns", o.Turns)
	m.emit(Event{Kind: EventEnd, Outcome: &o})
	return o
}

func (m *Match) emit(ev Event) {
	if m.opts.Observer == nil {
		return
	}
	ev.Size = m.board.Size()
	ev.Board = m.board.Clone()
	m.opts.Observer(ev)
}
