package board

// zobristKeys holds one random key per (cell, colour). A position's digest is
// the XOR of the keys of its stones, so a place or removal updates it in one
// step.
type zobristKeys struct {
	red  []uint64
	blue []uint64
}

// newZobristKeys derives the keys for an n×n board. The seed depends only on
// n, so digests are stable across processes.
func newZobristKeys(n int) zobristKeys {
	state := 0x2545f4914f6cdd1d ^ uint64(n)*0x9e3779b97f4a7c15
	draw := func() uint64 {
		// xorshift64*
		state ^= state >> 12
		state ^= state << 25
		state ^= state >> 27
		return state * 0x2545f4914f6cdd1d
	}
	keys := zobristKeys{red: make([]uint64, n*n), blue: make([]uint64, n*n)}
	for idx := range keys.red {
		keys.red[idx] = draw()
		keys.blue[idx] = draw()
	}
	return keys
}

func (k zobristKeys) key(idx int, color Color) uint64 {
	if color == Blue {
		return k.blue[idx]
	}
	return k.red[idx]
}

func (k zobristKeys) digest(cells []Color) uint64 {
	var hash uint64
	for idx, color := range cells {
		if color != Empty {
			hash ^= k.key(idx, color)
		}
	}
	return hash
}
