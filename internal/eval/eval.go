// Package eval scores Cachex positions from one player's point of view.
//
// Every feature is a differential between the player and the opponent, so
// Evaluate(b, p) == -Evaluate(b, p.Opponent()). Heuristic scores are clamped
// to HeuristicLimit, well below WinScore, so that a proven win always
// outranks any heuristic swing.
package eval

import (
	"math"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/pathcost"
)

const (
	WinScore       = 1e9
	HeuristicLimit = WinScore / 4
)

// Features is the breakdown behind a score.
type Features struct {
	OwnPath      int     `json:"own_path"`
	OpponentPath int     `json:"opponent_path"`
	PathDiff     float64 `json:"path_diff"`
	Pieces       int     `json:"pieces"`
	Triangles    int     `json:"triangles"`
	EdgePressure int     `json:"edge_pressure"`
	Centre       float64 `json:"centre"`
}

// Score combines features with w and clamps the result.
func (f Features) Score(w Weights) float64 {
	s := w.PathDiff*f.PathDiff +
		w.Pieces*float64(f.Pieces) +
		w.Triangles*float64(f.Triangles) +
		w.EdgePressure*float64(f.EdgePressure) +
		w.Centre*f.Centre
	return math.Max(-HeuristicLimit, math.Min(HeuristicLimit, s))
}

// Evaluator reuses path-finding buffers across calls. It never mutates the
// board it reads. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	weights Weights
	finder  *pathcost.Finder
}

func New(w Weights) *Evaluator {
	return &Evaluator{weights: w, finder: pathcost.NewFinder(1)}
}

func (e *Evaluator) Weights() Weights {
	return e.weights
}

func (e *Evaluator) Evaluate(b *board.Board, player board.Color) float64 {
	return e.Features(b, player).Score(e.weights)
}

// Evaluate is a one-off evaluation with fresh buffers.
func Evaluate(b *board.Board, player board.Color, w Weights) float64 {
	return New(w).Evaluate(b, player)
}

// Explain returns the feature breakdown and the resulting score.
func Explain(b *board.Board, player board.Color, w Weights) (Features, float64) {
	f := New(w).Features(b, player)
	return f, f.Score(w)
}

func (e *Evaluator) Features(b *board.Board, player board.Color) Features {
	opp := player.Opponent()
	var f Features
	w := e.weights
	// Zero-weight features are left at zero.
	if w.PathDiff != 0 {
		f.OwnPath = e.finder.Distance(b, player)
		f.OpponentPath = e.finder.Distance(b, opp)
		f.PathDiff = float64(clampPath(f.OpponentPath, b.Size()) - clampPath(f.OwnPath, b.Size()))
	}
	f.Pieces = b.Count(player) - b.Count(opp)
	if w.Triangles != 0 {
		f.Triangles = Triangles(b, player) - Triangles(b, opp)
	}
	if w.EdgePressure != 0 {
		f.EdgePressure = EdgeIntrusions(b, player) - EdgeIntrusions(b, opp)
	}
	if w.Centre != 0 {
		f.Centre = CentreDistance(b, opp) - CentreDistance(b, player)
	}
	return f
}

// clampPath maps Infinite onto one more than any reachable cost.
func clampPath(cost, n int) int {
	if cost == pathcost.Infinite {
		return n*n + 1
	}
	return cost
}

// Triangles counts triples of mutually adjacent stones of color. Such
// shapes cannot be broken by a diamond capture.
func Triangles(b *board.Board, color board.Color) int {
	total := 0
	cells := b.Size() * b.Size()
	for idx := 0; idx < cells; idx++ {
		if b.CellAt(idx) != color {
			continue
		}
		ring := b.Ring(idx)
		for i := range ring {
			a, c := ring[i], ring[(i+1)%len(ring)]
			if a >= 0 && c >= 0 && b.CellAt(a) == color && b.CellAt(c) == color {
				total++
			}
		}
	}
	// Each triangle is seen once from every corner.
	return total / 3
}

// EdgeIntrusions counts color's stones on the opponent's two edges.
func EdgeIntrusions(b *board.Board, color board.Color) int {
	opp := color.Opponent()
	count := 0
	for _, edge := range [][]board.Coord{b.StartEdge(opp), b.EndEdge(opp)} {
		for _, c := range edge {
			if b.At(c) == color {
				count++
			}
		}
	}
	return count
}

// CentreDistance is the mean hex distance of color's stones from the board
// centre, or 0 with no stones.
func CentreDistance(b *board.Board, color board.Color) float64 {
	if !color.IsPlayer() {
		return 0
	}
	stones := b.Stones(color)
	if len(stones) == 0 {
		return 0
	}
	mid := float64(b.Size()-1) / 2
	sum := 0.0
	for _, c := range stones {
		dr := float64(c.R) - mid
		dq := float64(c.Q) - mid
		sum += (math.Abs(dr) + math.Abs(dq) + math.Abs(dr+dq)) / 2
	}
	return sum / float64(len(stones))
}
