package referee

import (
	"time"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

type HistoryEntry struct {
	Turn     int           `json:"turn"`
	Color    board.Color   `json:"color"`
	Action   board.Action  `json:"action"`
	Captured []board.Coord `json:"captured,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
	Depth    int           `json:"depth,omitempty"`
}

type History struct {
	entries []HistoryEntry
}

func (h *History) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h History) Size() int {
	return len(h.entries)
}

func (h History) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}
