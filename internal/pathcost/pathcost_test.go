package pathcost

import (
	"math/rand"
	"testing"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

// relaxDistance is a Bellman-Ford style oracle: relax every cell until
// nothing changes.
func relaxDistance(b *board.Board, color board.Color) int {
	n := b.Size()
	dist := make(map[board.Coord]int)
	enter := func(c board.Coord) (int, bool) {
		switch b.At(c) {
		case color:
			return 0, true
		case board.Empty:
			return 1, true
		}
		return 0, false
	}
	for _, c := range b.StartEdge(color) {
		if cost, ok := enter(c); ok {
			dist[c] = cost
		}
	}
	for changed := true; changed; {
		changed = false
		for r := 0; r < n; r++ {
			for q := 0; q < n; q++ {
				c := board.Coord{R: r, Q: q}
				d, ok := dist[c]
				if !ok {
					continue
				}
				for _, nb := range b.Neighbors(c) {
					step, ok := enter(nb)
					if !ok {
						continue
					}
					if old, seen := dist[nb]; !seen || d+step < old {
						dist[nb] = d + step
						changed = true
					}
				}
			}
		}
	}
	best := Infinite
	for _, c := range b.EndEdge(color) {
		if d, ok := dist[c]; ok && d < best {
			best = d
		}
	}
	return best
}

func randomBoard(rng *rand.Rand, n, stones int) *board.Board {
	b := board.New(n)
	for i := 0; i < stones; i++ {
		c := board.Coord{R: rng.Intn(n), Q: rng.Intn(n)}
		_ = b.Put(c, board.Color(1+rng.Intn(2)))
	}
	return b
}

func TestEmptyBoardCostsN(t *testing.T) {
	for n := 1; n <= 7; n++ {
		b := board.New(n)
		for _, color := range []board.Color{board.Red, board.Blue} {
			if got := Distance(b, color); got != n {
				t.Fatalf("expected cost %d for %s on empty %dx%d, got %d", n, color, n, n, got)
			}
		}
	}
}

func TestEmptyBoardMatchesOracle(t *testing.T) {
	b := board.New(5)
	if got, want := Distance(b, board.Blue), relaxDistance(b, board.Blue); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestDistanceMatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	finder := NewFinder(4)
	for trial := 0; trial < 300; trial++ {
		n := 2 + rng.Intn(6)
		b := randomBoard(rng, n, rng.Intn(n*n))
		for _, color := range []board.Color{board.Red, board.Blue} {
			want := relaxDistance(b, color)
			if got := finder.Distance(b, color); got != want {
				t.Fatalf("trial %d: expected %d for %s, got %d", trial, want, color, got)
			}
		}
	}
}

func TestBlockedColourIsInfinite(t *testing.T) {
	b := board.New(3)
	for r := 0; r < 3; r++ {
		_ = b.Put(board.Coord{R: r, Q: 1}, board.Red)
	}
	res := ShortestPath(b, board.Blue)
	if res.Reachable() || res.Cost != Infinite {
		t.Fatalf("expected blue to be blocked, got cost %d", res.Cost)
	}
	if len(res.Path) != 0 {
		t.Fatalf("expected no path, got %v", res.Path)
	}
	if got := Distance(b, board.Red); got != 0 {
		t.Fatalf("expected red to be connected, got %d", got)
	}
}

func TestShortestPathIsWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		n := 3 + rng.Intn(5)
		b := randomBoard(rng, n, rng.Intn(n*n/2+1))
		color := board.Color(1 + rng.Intn(2))
		res := ShortestPath(b, color)
		if !res.Reachable() {
			continue
		}
		first, last := res.Path[0], res.Path[len(res.Path)-1]
		if board.AxisOf(color, first) != 0 || board.AxisOf(color, last) != n-1 {
			t.Fatalf("expected path to run edge to edge, got %v", res.Path)
		}
		for i := 1; i < len(res.Path); i++ {
			adjacent := false
			for _, nb := range b.Neighbors(res.Path[i-1]) {
				if nb == res.Path[i] {
					adjacent = true
				}
			}
			if !adjacent {
				t.Fatalf("expected consecutive path cells to touch, got %v", res.Path)
			}
		}
		for _, c := range res.Path {
			if b.At(c) == color.Opponent() {
				t.Fatalf("expected path to avoid opponent stones, got %s", c)
			}
		}
		if got := len(res.Missing(b)); got != res.Cost {
			t.Fatalf("expected %d missing stones, got %d", res.Cost, got)
		}
	}
}

func TestStoneNeverHurtsItsOwner(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 300; trial++ {
		n := 3 + rng.Intn(5)
		b := randomBoard(rng, n, rng.Intn(n*n/2+1))
		empties := b.Empties(nil)
		if len(empties) == 0 {
			continue
		}
		color := board.Color(1 + rng.Intn(2))
		ownBefore := Distance(b, color)
		oppBefore := Distance(b, color.Opponent())
		_ = b.Put(empties[rng.Intn(len(empties))], color)
		if got := Distance(b, color); got > ownBefore {
			t.Fatalf("expected own cost to not increase, %d -> %d", ownBefore, got)
		}
		if got := Distance(b, color.Opponent()); got < oppBefore {
			t.Fatalf("expected opponent cost to not decrease, %d -> %d", oppBefore, got)
		}
	}
}

func TestBetweenCountsBothEndpoints(t *testing.T) {
	b := board.New(5)
	res := Between(b, board.Blue, board.Coord{R: 0, Q: 0}, board.Coord{R: 0, Q: 4})
	if res.Cost != 5 || len(res.Path) != 5 {
		t.Fatalf("expected cost 5 over 5 cells, got %d over %v", res.Cost, res.Path)
	}
	_ = b.Put(board.Coord{R: 0, Q: 2}, board.Blue)
	res = Between(b, board.Blue, board.Coord{R: 0, Q: 0}, board.Coord{R: 0, Q: 4})
	if res.Cost != 4 {
		t.Fatalf("expected cost 4 through own stone, got %d", res.Cost)
	}
	_ = b.Put(board.Coord{R: 0, Q: 0}, board.Red)
	res = Between(b, board.Blue, board.Coord{R: 0, Q: 0}, board.Coord{R: 0, Q: 4})
	if res.Reachable() {
		t.Fatalf("expected opponent start cell to block, got %d", res.Cost)
	}
}

func TestFinderAdaptsToBoardSize(t *testing.T) {
	finder := NewFinder(3)
	if got := finder.Distance(board.New(6), board.Red); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := finder.Distance(board.New(2), board.Red); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
