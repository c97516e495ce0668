package board

// Cells are also addressable by their row-major index r*n+q. These accessors
// serve graph searches that run per evaluated node; the returned slices are
// shared and must not be modified.

func (b *Board) Index(c Coord) int {
	return b.index(c)
}

func (b *Board) CoordOf(idx int) Coord {
	return b.topo.coords[idx]
}

func (b *Board) CellAt(idx int) Color {
	return b.cells[idx]
}

func (b *Board) NeighborIndices(idx int) []int {
	return b.topo.neighbors[idx]
}

// Ring returns the neighbour index in each of the six step directions, -1
// where the step leaves the board.
func (b *Board) Ring(idx int) [6]int {
	return b.topo.ring[idx]
}
