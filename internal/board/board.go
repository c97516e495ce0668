package board

import "fmt"

// Board is the mutable n×n Cachex grid. It keeps the occupied-neighbour
// degree of every cell, per-colour stone counts and a Zobrist digest in step
// with the cells on every mutation.
//
// A Board is not safe for concurrent use.
type Board struct {
	n      int
	topo   *topology
	cells  []Color
	degree []int
	counts [3]int
	turns  int
	hash   uint64

	captureBuf []int
	visit      []uint32
	stamp      uint32
	queue      []int
}

// New returns an empty board of size n. It panics when n < 1.
func New(n int) *Board {
	if n < 1 {
		panic(fmt.Sprintf("board: invalid size %d", n))
	}
	cells := n * n
	return &Board{
		n:          n,
		topo:       topologyFor(n),
		cells:      make([]Color, cells),
		degree:     make([]int, cells),
		captureBuf: make([]int, 0, 24),
		visit:      make([]uint32, cells),
		queue:      make([]int, 0, cells),
	}
}

func (b *Board) Size() int {
	return b.n
}

// TurnsTaken counts applied placements and steals net of undos.
func (b *Board) TurnsTaken() int {
	return b.turns
}

func (b *Board) index(c Coord) int {
	return c.R*b.n + c.Q
}

func (b *Board) InBounds(c Coord) bool {
	return InBounds(c, b.n)
}

// At returns the content of c. Out-of-bounds coordinates read as Empty.
func (b *Board) At(c Coord) Color {
	if !b.InBounds(c) {
		return Empty
	}
	return b.cells[b.index(c)]
}

func (b *Board) IsOccupied(c Coord) bool {
	return b.At(c) != Empty
}

// NeighborDegree is the number of occupied neighbours of c.
func (b *Board) NeighborDegree(c Coord) int {
	return b.degree[b.index(c)]
}

func (b *Board) Count(color Color) int {
	if !color.IsPlayer() {
		return b.EmptyCount()
	}
	return b.counts[color]
}

func (b *Board) EmptyCount() int {
	return len(b.cells) - b.counts[Red] - b.counts[Blue]
}

// Digest identifies the cell contents. Equal boards share a digest.
func (b *Board) Digest() uint64 {
	return b.hash
}

func (b *Board) Neighbors(c Coord) []Coord {
	return Neighbors(c, b.n)
}

// Empties appends the empty cells to dst in row-major order.
func (b *Board) Empties(dst []Coord) []Coord {
	for idx, color := range b.cells {
		if color == Empty {
			dst = append(dst, b.topo.coords[idx])
		}
	}
	return dst
}

// Stones returns the cells held by color in row-major order.
func (b *Board) Stones(color Color) []Coord {
	out := make([]Coord, 0, b.counts[color])
	for idx, cell := range b.cells {
		if cell == color {
			out = append(out, b.topo.coords[idx])
		}
	}
	return out
}

// Put sets a cell directly, without captures or a turn. It is meant for
// building positions from a description.
func (b *Board) Put(c Coord, color Color) error {
	if !b.InBounds(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	idx := b.index(c)
	if b.cells[idx] != Empty {
		b.clear(idx)
	}
	if color.IsPlayer() {
		b.set(idx, color)
	}
	return nil
}

// Place puts a stone of color on c and resolves diamond captures, returning
// the removed opponent cells. c must be in bounds and empty; builds tagged
// cachexdebug panic otherwise.
func (b *Board) Place(color Color, c Coord) []Coord {
	if debugAssertions {
		if err := b.checkPlace(color, c); err != nil {
			panic(err)
		}
	}
	idx := b.index(c)
	b.turns++
	b.set(idx, color)
	return b.applyCaptures(idx, color)
}

func (b *Board) applyCaptures(idx int, color Color) []Coord {
	opp := color.Opponent()
	found := b.captureBuf[:0]
	for _, tri := range b.topo.captures[idx] {
		if b.cells[tri[0]] != color || b.cells[tri[1]] != opp || b.cells[tri[2]] != opp {
			continue
		}
		found = appendUnique(found, tri[1])
		found = appendUnique(found, tri[2])
	}
	b.captureBuf = found
	if len(found) == 0 {
		return nil
	}
	captured := make([]Coord, len(found))
	for i, cell := range found {
		b.clear(cell)
		captured[i] = b.topo.coords[cell]
	}
	return captured
}

func appendUnique(list []int, v int) []int {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// Swap applies the steal: the board is transposed and every stone changes
// colour.
func (b *Board) Swap() {
	b.turns++
	b.transform()
}

func (b *Board) transform() {
	next := make([]Color, len(b.cells))
	for idx, color := range b.cells {
		next[b.topo.transposed[idx]] = color.Opponent()
	}
	b.cells = next
	b.counts[Red], b.counts[Blue] = b.counts[Blue], b.counts[Red]
	b.recomputeDegrees()
	b.hash = b.topo.zobrist.digest(b.cells)
}

func (b *Board) recomputeDegrees() {
	for idx := range b.degree {
		deg := 0
		for _, nb := range b.topo.neighbors[idx] {
			if b.cells[nb] != Empty {
				deg++
			}
		}
		b.degree[idx] = deg
	}
}

// Undo reverses an applied move exactly, including restored captures.
func (b *Board) Undo(m MoveRecord) {
	if m.Kind == ActionSteal {
		b.transform()
		b.turns--
		return
	}
	b.clear(b.index(m.Coord))
	opp := m.Color.Opponent()
	for _, c := range m.Captured {
		b.set(b.index(c), opp)
	}
	b.turns--
}

// Apply performs a validated action for color and returns its undo record.
func (b *Board) Apply(color Color, a Action) MoveRecord {
	if a.Kind == ActionSteal {
		b.Swap()
		return MoveRecord{Kind: ActionSteal, Color: color}
	}
	captured := b.Place(color, a.Coord)
	return MoveRecord{Kind: ActionPlace, Color: color, Coord: a.Coord, Captured: captured}
}

// Check reports whether color may take action a now.
func (b *Board) Check(color Color, a Action) error {
	if !color.IsPlayer() {
		return ErrInvalidColor
	}
	switch a.Kind {
	case ActionSteal:
		if b.turns != 1 {
			return fmt.Errorf("%w: %d turns taken", ErrStealNotAllowed, b.turns)
		}
		return nil
	case ActionPlace:
		return b.checkPlace(color, a.Coord)
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownAction, a.Kind)
	}
}

func (b *Board) checkPlace(color Color, c Coord) error {
	if !color.IsPlayer() {
		return ErrInvalidColor
	}
	if !b.InBounds(c) {
		return fmt.Errorf("%w: %s on %dx%d", ErrOutOfBounds, c, b.n, b.n)
	}
	if b.cells[b.index(c)] != Empty {
		return fmt.Errorf("%w: %s", ErrOccupied, c)
	}
	return nil
}

func (b *Board) set(idx int, color Color) {
	b.cells[idx] = color
	b.counts[color]++
	b.hash ^= b.topo.zobrist.key(idx, color)
	for _, nb := range b.topo.neighbors[idx] {
		b.degree[nb]++
	}
}

func (b *Board) clear(idx int) {
	color := b.cells[idx]
	b.cells[idx] = Empty
	b.counts[color]--
	b.hash ^= b.topo.zobrist.key(idx, color)
	for _, nb := range b.topo.neighbors[idx] {
		b.degree[nb]--
	}
}

// Clone returns an independent copy sharing only the immutable tables.
func (b *Board) Clone() *Board {
	out := &Board{
		n:          b.n,
		topo:       b.topo,
		cells:      append([]Color(nil), b.cells...),
		degree:     append([]int(nil), b.degree...),
		counts:     b.counts,
		turns:      b.turns,
		hash:       b.hash,
		captureBuf: make([]int, 0, 24),
		visit:      make([]uint32, len(b.cells)),
		queue:      make([]int, 0, len(b.cells)),
	}
	return out
}

// Equal compares cells, degrees and the turn count.
func (b *Board) Equal(o *Board) bool {
	if b.n != o.n || b.turns != o.turns || b.counts != o.counts || b.hash != o.hash {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] || b.degree[i] != o.degree[i] {
			return false
		}
	}
	return true
}
