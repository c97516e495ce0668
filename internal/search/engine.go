// Package search picks Cachex moves with iterative-deepening alpha-beta.
//
// The engine mutates the caller's board in place and undoes every trial move
// before the next sibling, so at most one hypothetical line is live at a time
// and the board is unchanged when Choose returns. The deadline is polled
// between sibling expansions; an interrupted node returns its best so far.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/eval"
)

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine is reusable across decisions but not safe for concurrent use.
type Engine struct {
	settings Settings
	eval     *eval.Evaluator
	logger   *slog.Logger
	metrics  *Metrics
	plies    [][]board.Coord
}

func NewEngine(settings Settings, weights eval.Weights, opts ...Option) *Engine {
	e := &Engine{
		settings: settings,
		eval:     eval.New(weights),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "search")
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

type Source string

const (
	SourceBook     Source = "book"
	SourceSearch   Source = "search"
	SourceFallback Source = "fallback"
)

type Result struct {
	Action board.Action `json:"action"`
	Score  float64      `json:"score"`
	Source Source       `json:"source"`
	Stats  Stats        `json:"stats"`
}

// Choose selects an action for player. remaining is the player's game budget
// left; ctx may cancel the search early. ok is false only when the board has
// no empty cell.
func (e *Engine) Choose(ctx context.Context, b *board.Board, player board.Color, remaining time.Duration) (Result, bool) {
	start := time.Now()
	if b.EmptyCount() == 0 {
		return Result{}, false
	}
	if res, ok := e.book(b); ok {
		res.Stats.Elapsed = time.Since(start)
		return res, true
	}
	empties := b.Empties(nil)
	if remaining <= 0 {
		res := Result{Action: board.PlaceAt(empties[0]), Source: SourceFallback}
		res.Stats.TimedOut = true
		res.Stats.Elapsed = time.Since(start)
		e.finish(res)
		return res, true
	}

	s := &searcher{
		engine:   e,
		ctx:      ctx,
		deadline: start.Add(e.settings.allowance(remaining)),
		player:   player,
	}
	if d, ok := ctx.Deadline(); ok && d.Before(s.deadline) {
		s.deadline = d
	}
	target := e.settings.DepthFor(len(empties), remaining)
	s.stats.TargetDepth = target

	root := e.order(b, 0)
	res := Result{Action: board.PlaceAt(root[0]), Source: SourceFallback}
	var pv *board.Coord
	for depth := 1; depth <= target; depth++ {
		if depth > 1 && s.timedOut() {
			break
		}
		iterStart := time.Now()
		move, score, complete := s.root(b, depth, root, pv)
		s.stats.DepthDurations = append(s.stats.DepthDurations, time.Since(iterStart))
		if complete {
			res.Action, res.Score, res.Source = board.PlaceAt(move), score, SourceSearch
			s.stats.CompletedDepth = depth
			best := move
			pv = &best
			if score > eval.HeuristicLimit {
				// Proven win; deeper iterations cannot improve on it.
				break
			}
			continue
		}
		if !e.settings.ReturnLastCompleteDepth || s.stats.CompletedDepth == 0 {
			res.Action, res.Score, res.Source = board.PlaceAt(move), score, SourceSearch
		}
		break
	}
	s.stats.Elapsed = time.Since(start)
	res.Stats = s.stats
	e.finish(res)
	return res, true
}

func (e *Engine) finish(res Result) {
	e.metrics.observe(res.Stats)
	logSearchStats(e.logger, string(res.Source), res.Stats)
}

// book covers the first two actions of a game. The opening only applies to a
// genuinely empty board.
func (e *Engine) book(b *board.Board) (Result, bool) {
	switch b.TurnsTaken() {
	case 0:
		if b.EmptyCount() != b.Size()*b.Size() {
			return Result{}, false
		}
		return Result{Action: board.PlaceAt(e.settings.Opening.Coord(b.Size())), Source: SourceBook}, true
	case 1:
		if !e.settings.Steal {
			return Result{}, false
		}
		return Result{Action: board.Steal(), Source: SourceBook}, true
	}
	return Result{}, false
}

// order lists the empty cells by descending neighbour degree. Ties keep
// row-major order. The slice is owned by the engine and reused per ply.
func (e *Engine) order(b *board.Board, ply int) []board.Coord {
	for len(e.plies) <= ply {
		e.plies = append(e.plies, nil)
	}
	moves := b.Empties(e.plies[ply][:0])
	sort.SliceStable(moves, func(i, j int) bool {
		return b.NeighborDegree(moves[i]) > b.NeighborDegree(moves[j])
	})
	e.plies[ply] = moves
	return moves
}

type searcher struct {
	engine   *Engine
	ctx      context.Context
	deadline time.Time
	player   board.Color
	stats    Stats
	aborted  bool
}

func (s *searcher) timedOut() bool {
	if s.aborted {
		return true
	}
	if time.Now().After(s.deadline) || s.ctx.Err() != nil {
		s.aborted = true
		s.stats.TimedOut = true
	}
	return s.aborted
}

// root searches one iteration. complete is false when the deadline cut the
// iteration short; move and score then describe the best sibling explored.
func (s *searcher) root(b *board.Board, depth int, moves []board.Coord, pv *board.Coord) (board.Coord, float64, bool) {
	ordered := moves
	if pv != nil {
		ordered = withFirst(moves, *pv)
	}
	alpha, beta := math.Inf(-1), math.Inf(1)
	best := ordered[0]
	bestScore := math.Inf(-1)
	for i, move := range ordered {
		if i > 0 && s.timedOut() {
			return best, bestScore, false
		}
		s.stats.Nodes++
		rec := b.Apply(s.player, board.PlaceAt(move))
		score := -s.negamax(b, s.player.Opponent(), depth-1, 1, -beta, -alpha, move)
		b.Undo(rec)
		if score > bestScore {
			best, bestScore = move, score
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}
	return best, bestScore, !s.aborted
}

// negamax scores the position for toMove. last is the stone the opponent
// just placed.
func (s *searcher) negamax(b *board.Board, toMove board.Color, depth, ply int, alpha, beta float64, last board.Coord) float64 {
	if b.WinFrom(last) {
		s.stats.Wins++
		return -(eval.WinScore - float64(ply))
	}
	if depth == 0 || b.EmptyCount() == 0 {
		s.stats.Evaluations++
		return s.engine.eval.Evaluate(b, toMove)
	}
	moves := s.engine.order(b, ply)
	best := math.Inf(-1)
	for i := range moves {
		if i > 0 && s.timedOut() {
			break
		}
		move := moves[i]
		s.stats.Nodes++
		rec := b.Apply(toMove, board.PlaceAt(move))
		score := -s.negamax(b, toMove.Opponent(), depth-1, ply+1, -beta, -alpha, move)
		b.Undo(rec)
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			s.stats.Cutoffs++
			break
		}
	}
	return best
}

func withFirst(moves []board.Coord, first board.Coord) []board.Coord {
	out := make([]board.Coord, 0, len(moves))
	out = append(out, first)
	for _, m := range moves {
		if m != first {
			out = append(out, m)
		}
	}
	return out
}
