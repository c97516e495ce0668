package board

import (
	"fmt"
	"sync"
)

// Coord addresses a cell of the rhombus as (row, column).
type Coord struct {
	R int `json:"r"`
	Q int `json:"q"`
}

func (c Coord) Add(o Coord) Coord {
	return Coord{R: c.R + o.R, Q: c.Q + o.Q}
}

// Transpose mirrors the coordinate across the major board axis.
func (c Coord) Transpose() Coord {
	return Coord{R: c.Q, Q: c.R}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.R, c.Q)
}

// Steps are the six neighbour offsets in clockwise order.
var Steps = [6]Coord{{1, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {0, -1}}

// CapturePattern describes one diamond a cell can close as its far vertex.
// Far is the sum of the two middle steps.
type CapturePattern struct {
	Far  Coord
	Mid1 Coord
	Mid2 Coord
}

// CapturePatterns holds the 6 longways diamonds (adjacent steps) followed by
// the 6 sideways diamonds (steps one apart).
var CapturePatterns = buildCapturePatterns()

func buildCapturePatterns() [12]CapturePattern {
	var patterns [12]CapturePattern
	for skip := 1; skip <= 2; skip++ {
		for i, step := range Steps {
			other := Steps[(i-skip+len(Steps))%len(Steps)]
			patterns[(skip-1)*len(Steps)+i] = CapturePattern{
				Far:  step.Add(other),
				Mid1: step,
				Mid2: other,
			}
		}
	}
	return patterns
}

// InBounds reports whether c lies on an n×n board.
func InBounds(c Coord, n int) bool {
	return c.R >= 0 && c.Q >= 0 && c.R < n && c.Q < n
}

// Neighbors returns the in-bounds neighbours of c on an n×n board in step order.
func Neighbors(c Coord, n int) []Coord {
	out := make([]Coord, 0, len(Steps))
	for _, step := range Steps {
		next := c.Add(step)
		if InBounds(next, n) {
			out = append(out, next)
		}
	}
	return out
}

// topology is the immutable per-size lookup table shared by every board of
// that size. ring[idx][i] is the neighbour in direction i, or -1 off the
// board. transposed[idx] is the cell mirrored across the major axis.
type topology struct {
	n          int
	coords     []Coord
	neighbors  [][]int
	ring       [][6]int
	captures   [][][3]int
	transposed []int
	zobrist    zobristKeys
}

type topologyStore struct {
	mu     sync.Mutex
	bySize map[int]*topology
}

var topologies = &topologyStore{bySize: make(map[int]*topology)}

func topologyFor(n int) *topology {
	topologies.mu.Lock()
	defer topologies.mu.Unlock()
	if topo, ok := topologies.bySize[n]; ok {
		return topo
	}
	topo := buildTopology(n)
	topologies.bySize[n] = topo
	return topo
}

func buildTopology(n int) *topology {
	cells := n * n
	topo := &topology{
		n:          n,
		coords:     make([]Coord, cells),
		neighbors:  make([][]int, cells),
		ring:       make([][6]int, cells),
		captures:   make([][][3]int, cells),
		transposed: make([]int, cells),
		zobrist:    newZobristKeys(n),
	}
	index := func(c Coord) int { return c.R*n + c.Q }
	for r := 0; r < n; r++ {
		for q := 0; q < n; q++ {
			c := Coord{R: r, Q: q}
			idx := index(c)
			topo.coords[idx] = c
			topo.transposed[idx] = index(c.Transpose())
			for i, step := range Steps {
				next := c.Add(step)
				if !InBounds(next, n) {
					topo.ring[idx][i] = -1
					continue
				}
				topo.ring[idx][i] = index(next)
				topo.neighbors[idx] = append(topo.neighbors[idx], index(next))
			}
			for _, p := range CapturePatterns {
				far, m1, m2 := c.Add(p.Far), c.Add(p.Mid1), c.Add(p.Mid2)
				if !InBounds(far, n) || !InBounds(m1, n) || !InBounds(m2, n) {
					continue
				}
				topo.captures[idx] = append(topo.captures[idx], [3]int{index(far), index(m1), index(m2)})
			}
		}
	}
	return topo
}
