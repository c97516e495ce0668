package board

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func sortedCoords(list []Coord) []Coord {
	out := append([]Coord(nil), list...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].R != out[j].R {
			return out[i].R < out[j].R
		}
		return out[i].Q < out[j].Q
	})
	return out
}

func sameCoords(a, b []Coord) bool {
	if len(a) != len(b) {
		return false
	}
	a, b = sortedCoords(a), sortedCoords(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustPut(t *testing.T, b *Board, c Coord, color Color) {
	t.Helper()
	if err := b.Put(c, color); err != nil {
		t.Fatalf("put %s: %v", c, err)
	}
}

func assertConsistent(t *testing.T, b *Board) {
	t.Helper()
	for r := 0; r < b.Size(); r++ {
		for q := 0; q < b.Size(); q++ {
			c := Coord{R: r, Q: q}
			want := 0
			for _, nb := range b.Neighbors(c) {
				if b.IsOccupied(nb) {
					want++
				}
			}
			if got := b.NeighborDegree(c); got != want {
				t.Fatalf("expected degree %d at %s, got %d", want, c, got)
			}
		}
	}
	if got, want := b.Digest(), b.topo.zobrist.digest(b.cells); got != want {
		t.Fatalf("expected digest %d, got %d", want, got)
	}
	if got := len(b.Stones(Red)); got != b.Count(Red) {
		t.Fatalf("expected red count %d, got %d", got, b.Count(Red))
	}
	if got := len(b.Stones(Blue)); got != b.Count(Blue) {
		t.Fatalf("expected blue count %d, got %d", got, b.Count(Blue))
	}
}

func TestCapturePatternsAreDistinctDiamonds(t *testing.T) {
	seen := make(map[CapturePattern]bool)
	for _, p := range CapturePatterns {
		if p.Far != p.Mid1.Add(p.Mid2) {
			t.Fatalf("expected far offset to be the sum of the middles, got %+v", p)
		}
		if seen[p] {
			t.Fatalf("duplicate pattern %+v", p)
		}
		seen[p] = true
	}
	if len(seen) != 12 {
		t.Fatalf("expected 12 patterns, got %d", len(seen))
	}
}

func TestNeighborsOnCornersAndCentre(t *testing.T) {
	cases := []struct {
		c    Coord
		want int
	}{
		{Coord{0, 0}, 2},
		{Coord{0, 4}, 3},
		{Coord{4, 0}, 3},
		{Coord{4, 4}, 2},
		{Coord{2, 2}, 6},
		{Coord{0, 2}, 4},
	}
	for _, tc := range cases {
		if got := len(Neighbors(tc.c, 5)); got != tc.want {
			t.Fatalf("expected %d neighbours for %s, got %d", tc.want, tc.c, got)
		}
	}
}

func TestLongwaysDiamondCapture(t *testing.T) {
	b := New(5)
	mustPut(t, b, Coord{3, 1}, Red)
	mustPut(t, b, Coord{2, 2}, Blue)
	mustPut(t, b, Coord{2, 1}, Blue)

	captured := b.Place(Red, Coord{1, 2})
	if !sameCoords(captured, []Coord{{2, 2}, {2, 1}}) {
		t.Fatalf("expected both blue stones captured, got %v", captured)
	}
	if b.IsOccupied(Coord{2, 2}) || b.IsOccupied(Coord{2, 1}) {
		t.Fatalf("expected captured cells to be empty")
	}
	if b.Count(Blue) != 0 || b.Count(Red) != 2 {
		t.Fatalf("expected 2 red and 0 blue, got %d and %d", b.Count(Red), b.Count(Blue))
	}
	assertConsistent(t, b)
}

func TestSidewaysDiamondCapture(t *testing.T) {
	b := New(5)
	mustPut(t, b, Coord{3, 1}, Red)
	mustPut(t, b, Coord{3, 2}, Blue)
	mustPut(t, b, Coord{2, 1}, Blue)

	captured := b.Place(Red, Coord{2, 2})
	if !sameCoords(captured, []Coord{{3, 2}, {2, 1}}) {
		t.Fatalf("expected sideways capture, got %v", captured)
	}
	assertConsistent(t, b)
}

func TestCaptureNeedsOpponentPair(t *testing.T) {
	b := New(5)
	mustPut(t, b, Coord{3, 1}, Red)
	mustPut(t, b, Coord{2, 2}, Blue)
	mustPut(t, b, Coord{2, 1}, Red)

	if captured := b.Place(Red, Coord{1, 2}); len(captured) != 0 {
		t.Fatalf("expected no capture, got %v", captured)
	}
}

func TestCapturesAreDetectedBeforeRemoval(t *testing.T) {
	// (2,2) closes two diamonds that share the blue stone at (2,1).
	b := New(5)
	mustPut(t, b, Coord{3, 1}, Red)
	mustPut(t, b, Coord{1, 1}, Red)
	mustPut(t, b, Coord{2, 1}, Blue)
	mustPut(t, b, Coord{3, 2}, Blue)
	mustPut(t, b, Coord{1, 2}, Blue)

	captured := b.Place(Red, Coord{2, 2})
	if !sameCoords(captured, []Coord{{2, 1}, {3, 2}, {1, 2}}) {
		t.Fatalf("expected three distinct captured cells, got %v", captured)
	}
	assertConsistent(t, b)
}

func TestCaptureMirrorsUnderColourSwap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		a, b := New(5), New(5)
		for i := 0; i < 12; i++ {
			c := Coord{R: rng.Intn(5), Q: rng.Intn(5)}
			color := Color(1 + rng.Intn(2))
			mustPut(t, a, c, color)
			mustPut(t, b, c, color.Opponent())
		}
		empties := a.Empties(nil)
		if len(empties) == 0 {
			continue
		}
		c := empties[rng.Intn(len(empties))]
		gotA := a.Place(Red, c)
		gotB := b.Place(Blue, c)
		if !sameCoords(gotA, gotB) {
			t.Fatalf("expected mirrored captures at %s, got %v and %v", c, gotA, gotB)
		}
	}
}

func TestUndoRestoresBoardExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 50; game++ {
		n := 3 + rng.Intn(5)
		b := New(n)
		color := Red
		var records []MoveRecord
		var snapshots []*Board
		for b.EmptyCount() > 0 {
			var action Action
			if b.TurnsTaken() == 1 && rng.Intn(2) == 0 {
				action = Steal()
			} else {
				empties := b.Empties(nil)
				action = PlaceAt(empties[rng.Intn(len(empties))])
			}
			if err := b.Check(color, action); err != nil {
				t.Fatalf("generated illegal action %s: %v", action, err)
			}
			before := b.Clone()
			rec := b.Apply(color, action)
			assertConsistent(t, b)

			b.Undo(rec)
			if !b.Equal(before) {
				t.Fatalf("expected undo of %s to restore the board", action)
			}
			rec = b.Apply(color, action)
			records = append(records, rec)
			snapshots = append(snapshots, before)
			color = color.Opponent()
			if len(records) > n*n*3 {
				break
			}
		}
		for i := len(records) - 1; i >= 0; i-- {
			b.Undo(records[i])
			if !b.Equal(snapshots[i]) {
				t.Fatalf("expected unwinding move %d to restore snapshot", i)
			}
		}
		if b.TurnsTaken() != 0 || b.EmptyCount() != n*n {
			t.Fatalf("expected empty board after unwinding, got %d turns", b.TurnsTaken())
		}
	}
}

func TestSwapTransposesAndRecolours(t *testing.T) {
	b := New(4)
	b.Place(Red, Coord{0, 2})
	before := b.Clone()

	rec := b.Apply(Blue, Steal())
	if b.At(Coord{2, 0}) != Blue {
		t.Fatalf("expected blue at (2,0), got %s", b.At(Coord{2, 0}))
	}
	if b.IsOccupied(Coord{0, 2}) {
		t.Fatalf("expected (0,2) to be empty after swap")
	}
	if b.TurnsTaken() != 2 {
		t.Fatalf("expected 2 turns after steal, got %d", b.TurnsTaken())
	}
	if b.Count(Blue) != 1 || b.Count(Red) != 0 {
		t.Fatalf("expected counts to swap, got red=%d blue=%d", b.Count(Red), b.Count(Blue))
	}
	assertConsistent(t, b)

	b.Undo(rec)
	if !b.Equal(before) {
		t.Fatalf("expected undo of steal to restore the board")
	}
}

func TestCheckRejectsIllegalActions(t *testing.T) {
	b := New(3)
	if err := b.Check(Blue, Steal()); !errors.Is(err, ErrStealNotAllowed) {
		t.Fatalf("expected steal to be rejected on turn 0, got %v", err)
	}
	b.Apply(Red, Place(1, 1))
	if err := b.Check(Blue, Steal()); err != nil {
		t.Fatalf("expected steal on turn 1, got %v", err)
	}
	if err := b.Check(Blue, Place(1, 1)); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected occupied error, got %v", err)
	}
	if err := b.Check(Blue, Place(3, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds error, got %v", err)
	}
	if err := b.Check(Empty, Place(0, 0)); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected invalid colour error, got %v", err)
	}
	b.Apply(Blue, Place(0, 0))
	if err := b.Check(Red, Steal()); !errors.Is(err, ErrStealNotAllowed) {
		t.Fatalf("expected steal to be rejected on turn 2, got %v", err)
	}
}

func TestConnectedCoordsAndWin(t *testing.T) {
	b := New(3)
	b.Place(Red, Coord{0, 1})
	b.Place(Red, Coord{1, 1})
	if b.WinFrom(Coord{1, 1}) {
		t.Fatalf("expected no win with two stones")
	}
	b.Place(Red, Coord{2, 1})

	got := b.ConnectedCoords(Coord{1, 1})
	if !sameCoords(got, []Coord{{0, 1}, {1, 1}, {2, 1}}) {
		t.Fatalf("expected the red column, got %v", got)
	}
	if !b.WinFrom(Coord{1, 1}) {
		t.Fatalf("expected red to win across rows 0 and 2")
	}
	if !b.HasWon(Red) {
		t.Fatalf("expected HasWon(red)")
	}
	if b.HasWon(Blue) {
		t.Fatalf("expected blue not to have won")
	}
}

func TestBlueWinsAcrossColumns(t *testing.T) {
	b := New(3)
	b.Place(Blue, Coord{1, 0})
	b.Place(Blue, Coord{1, 1})
	b.Place(Blue, Coord{1, 2})
	if !b.HasWon(Blue) {
		t.Fatalf("expected blue to connect columns 0 and 2")
	}
	if b.HasWon(Red) {
		t.Fatalf("expected red not to have won")
	}
}

func TestWinRequiresBothEdges(t *testing.T) {
	b := New(4)
	for _, c := range []Coord{{0, 0}, {1, 0}, {2, 0}, {0, 1}} {
		b.Place(Red, c)
	}
	if b.WinFrom(Coord{0, 0}) {
		t.Fatalf("expected no win without reaching row 3")
	}
	b.Place(Red, Coord{3, 0})
	if !b.WinFrom(Coord{3, 0}) {
		t.Fatalf("expected win after reaching row 3")
	}
}

func TestSingleCellBoardWin(t *testing.T) {
	for _, color := range []Color{Red, Blue} {
		b := New(1)
		b.Place(color, Coord{0, 0})
		if !b.WinFrom(Coord{0, 0}) {
			t.Fatalf("expected %s to win from the only cell", color)
		}
		if !b.HasWon(color) {
			t.Fatalf("expected %s to have won on a 1x1 board", color)
		}
		if b.HasWon(color.Opponent()) {
			t.Fatalf("expected %s not to have won", color.Opponent())
		}
	}
}

func TestDigestMatchesPosition(t *testing.T) {
	a, b := New(4), New(4)
	a.Place(Red, Coord{0, 0})
	a.Place(Blue, Coord{1, 1})
	b.Place(Blue, Coord{1, 1})
	b.Place(Red, Coord{0, 0})
	if a.Digest() != b.Digest() {
		t.Fatalf("expected equal digests for transposed move order")
	}
	b.Place(Red, Coord{2, 2})
	if a.Digest() == b.Digest() {
		t.Fatalf("expected digests to differ")
	}
}

func TestEmptiesAreRowMajor(t *testing.T) {
	b := New(2)
	b.Place(Red, Coord{0, 1})
	got := b.Empties(nil)
	want := []Coord{{0, 0}, {1, 0}, {1, 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
