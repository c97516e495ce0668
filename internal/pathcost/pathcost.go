// Package pathcost computes how many more stones a colour needs to connect.
//
// Cells the colour already holds cost 0 to enter, empty cells cost 1 and
// opponent cells cannot be entered. The search is Dijkstra over a binary heap
// with lazy deletion: stale entries stay queued and are skipped on pop.
package pathcost

import (
	"container/heap"
	"math"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

// Infinite is the cost reported when the opponent blocks every route.
const Infinite = math.MaxInt32

type Result struct {
	Cost int           `json:"cost"`
	Path []board.Coord `json:"path"`
}

func (r Result) Reachable() bool {
	return r.Cost != Infinite
}

// Missing returns the empty cells on the path, the stones still to place.
func (r Result) Missing(b *board.Board) []board.Coord {
	out := make([]board.Coord, 0, len(r.Path))
	for _, c := range r.Path {
		if !b.IsOccupied(c) {
			out = append(out, c)
		}
	}
	return out
}

// Finder keeps the Dijkstra buffers for one board size so repeated queries do
// not allocate. A Finder is not safe for concurrent use.
type Finder struct {
	n      int
	dist   []int
	done   []bool
	parent []int
	goal   []bool
	queue  entryHeap
	seq    int
}

func NewFinder(n int) *Finder {
	cells := n * n
	return &Finder{
		n:      n,
		dist:   make([]int, cells),
		done:   make([]bool, cells),
		parent: make([]int, cells),
		goal:   make([]bool, cells),
		queue:  make(entryHeap, 0, cells*2),
	}
}

func (f *Finder) ensure(n int) {
	if f.n != n {
		*f = *NewFinder(n)
	}
}

// Distance returns the edge-to-edge cost for color, or Infinite.
func Distance(b *board.Board, color board.Color) int {
	return NewFinder(b.Size()).Distance(b, color)
}

// ShortestPath returns the edge-to-edge cost and one cheapest path.
func ShortestPath(b *board.Board, color board.Color) Result {
	return NewFinder(b.Size()).ShortestPath(b, color)
}

// Between returns the cheapest route for color from start to goal.
func Between(b *board.Board, color board.Color, start, goal board.Coord) Result {
	return NewFinder(b.Size()).Between(b, color, start, goal)
}

func (f *Finder) Distance(b *board.Board, color board.Color) int {
	end := f.seedEdges(b, color)
	if end < 0 {
		return Infinite
	}
	return f.dist[end]
}

func (f *Finder) ShortestPath(b *board.Board, color board.Color) Result {
	end := f.seedEdges(b, color)
	return f.result(b, end)
}

func (f *Finder) Between(b *board.Board, color board.Color, start, goal board.Coord) Result {
	f.ensure(b.Size())
	f.reset()
	if !b.InBounds(start) || !b.InBounds(goal) {
		return Result{Cost: Infinite}
	}
	f.goal[b.Index(goal)] = true
	f.seed(b, color, b.Index(start))
	return f.result(b, f.run(b, color))
}

func (f *Finder) seedEdges(b *board.Board, color board.Color) int {
	f.ensure(b.Size())
	f.reset()
	for _, c := range b.EndEdge(color) {
		f.goal[b.Index(c)] = true
	}
	for _, c := range b.StartEdge(color) {
		f.seed(b, color, b.Index(c))
	}
	return f.run(b, color)
}

func (f *Finder) reset() {
	for i := range f.dist {
		f.dist[i] = Infinite
		f.done[i] = false
		f.parent[i] = -1
		f.goal[i] = false
	}
	f.queue = f.queue[:0]
	f.seq = 0
}

func (f *Finder) seed(b *board.Board, color board.Color, idx int) {
	cost, ok := stepCost(b.CellAt(idx), color)
	if !ok || cost >= f.dist[idx] {
		return
	}
	f.dist[idx] = cost
	f.push(idx, cost)
}

func (f *Finder) push(idx, cost int) {
	heap.Push(&f.queue, entry{cost: cost, seq: f.seq, idx: idx})
	f.seq++
}

// run expands until a goal cell is finalised and returns it, or -1.
func (f *Finder) run(b *board.Board, color board.Color) int {
	for f.queue.Len() > 0 {
		top := heap.Pop(&f.queue).(entry)
		if f.done[top.idx] || top.cost > f.dist[top.idx] {
			continue
		}
		f.done[top.idx] = true
		if f.goal[top.idx] {
			return top.idx
		}
		for _, nb := range b.NeighborIndices(top.idx) {
			if f.done[nb] {
				continue
			}
			step, ok := stepCost(b.CellAt(nb), color)
			if !ok {
				continue
			}
			if next := top.cost + step; next < f.dist[nb] {
				f.dist[nb] = next
				f.parent[nb] = top.idx
				f.push(nb, next)
			}
		}
	}
	return -1
}

func (f *Finder) result(b *board.Board, end int) Result {
	if end < 0 {
		return Result{Cost: Infinite}
	}
	var path []board.Coord
	for idx := end; idx >= 0; idx = f.parent[idx] {
		path = append(path, b.CoordOf(idx))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return Result{Cost: f.dist[end], Path: path}
}

func stepCost(cell, color board.Color) (int, bool) {
	switch cell {
	case color:
		return 0, true
	case board.Empty:
		return 1, true
	default:
		return 0, false
	}
}

type entry struct {
	cost int
	seq  int
	idx  int
}

// entryHeap orders by cost, then insertion order.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}
