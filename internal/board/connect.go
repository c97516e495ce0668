package board

// StartEdge lists the cells where color's connection begins: row 0 for Red,
// column 0 for Blue.
func (b *Board) StartEdge(color Color) []Coord {
	return b.edge(color, 0)
}

// EndEdge lists the opposite edge: row n-1 for Red, column n-1 for Blue.
func (b *Board) EndEdge(color Color) []Coord {
	return b.edge(color, b.n-1)
}

func (b *Board) edge(color Color, line int) []Coord {
	out := make([]Coord, b.n)
	for i := range out {
		if color == Red {
			out[i] = Coord{R: line, Q: i}
		} else {
			out[i] = Coord{R: i, Q: line}
		}
	}
	return out
}

// AxisOf projects c onto the connection axis of color.
func AxisOf(color Color, c Coord) int {
	if color == Red {
		return c.R
	}
	return c.Q
}

func (b *Board) axis(color Color, idx int) int {
	return AxisOf(color, b.topo.coords[idx])
}

func (b *Board) nextStamp() uint32 {
	b.stamp++
	if b.stamp == 0 {
		for i := range b.visit {
			b.visit[i] = 0
		}
		b.stamp = 1
	}
	return b.stamp
}

// ConnectedCoords flood-fills from start over cells of the same content and
// returns the reached cells in visit order.
func (b *Board) ConnectedCoords(start Coord) []Coord {
	if !b.InBounds(start) {
		return nil
	}
	stamp := b.nextStamp()
	first := b.index(start)
	want := b.cells[first]
	queue := append(b.queue[:0], first)
	b.visit[first] = stamp
	out := make([]Coord, 0, 8)
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		out = append(out, b.topo.coords[idx])
		for _, nb := range b.topo.neighbors[idx] {
			if b.visit[nb] == stamp || b.cells[nb] != want {
				continue
			}
			b.visit[nb] = stamp
			queue = append(queue, nb)
		}
	}
	b.queue = queue
	return out
}

// WinFrom reports whether the group holding c spans both edges of its
// owner's axis. Groups of a colour with fewer than n stones never win.
func (b *Board) WinFrom(c Coord) bool {
	if !b.InBounds(c) {
		return false
	}
	color := b.cells[b.index(c)]
	if !color.IsPlayer() || b.counts[color] < b.n {
		return false
	}
	return b.spans(color, b.nextStamp(), b.index(c))
}

// HasWon reports whether any group of color connects its two edges.
func (b *Board) HasWon(color Color) bool {
	if !color.IsPlayer() || b.counts[color] < b.n {
		return false
	}
	stamp := b.nextStamp()
	for _, c := range b.StartEdge(color) {
		idx := b.index(c)
		if b.cells[idx] != color || b.visit[idx] == stamp {
			continue
		}
		if b.spans(color, stamp, idx) {
			return true
		}
	}
	return false
}

func (b *Board) spans(color Color, stamp uint32, first int) bool {
	last := b.n - 1
	queue := append(b.queue[:0], first)
	b.visit[first] = stamp
	touchStart, touchEnd := false, false
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		a := b.axis(color, idx)
		if a == 0 {
			touchStart = true
		}
		if a == last {
			touchEnd = true
		}
		if touchStart && touchEnd {
			b.queue = queue
			return true
		}
		for _, nb := range b.topo.neighbors[idx] {
			if b.visit[nb] == stamp || b.cells[nb] != color {
				continue
			}
			b.visit[nb] = stamp
			queue = append(queue, nb)
		}
	}
	b.queue = queue
	return false
}
