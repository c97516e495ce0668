// Package boardio reads offline position documents and draws boards for the
// terminal.
package boardio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

// MaxSize bounds the board size a document may request.
const MaxSize = 64

var ErrMalformedDocument = errors.New("malformed document")

// Stone is one [colour, row, col] entry.
type Stone struct {
	Color board.Color
	At    board.Coord
}

func (s Stone) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Color.String(), s.At.R, s.At.Q})
}

func (s *Stone) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("stone needs [colour, row, col], got %d fields", len(raw))
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return fmt.Errorf("stone colour: %w", err)
	}
	color, err := board.ParseColor(name)
	if err != nil {
		return err
	}
	var r, q int
	if err := json.Unmarshal(raw[1], &r); err != nil {
		return fmt.Errorf("stone row: %w", err)
	}
	if err := json.Unmarshal(raw[2], &q); err != nil {
		return fmt.Errorf("stone col: %w", err)
	}
	*s = Stone{Color: color, At: board.Coord{R: r, Q: q}}
	return nil
}

// Point is a [row, col] pair.
type Point [2]int

func (p Point) Coord() board.Coord {
	return board.Coord{R: p[0], Q: p[1]}
}

type Document struct {
	N      int     `json:"n"`
	Stones []Stone `json:"board"`
	Start  *Point  `json:"start,omitempty"`
	Goal   *Point  `json:"goal,omitempty"`
}

// Parse decodes and validates a document.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (d Document) Validate() error {
	if d.N < 1 || d.N > MaxSize {
		return fmt.Errorf("%w: board size %d outside 1..%d", ErrMalformedDocument, d.N, MaxSize)
	}
	seen := make(map[board.Coord]bool, len(d.Stones))
	for i, s := range d.Stones {
		if !s.Color.IsPlayer() {
			return fmt.Errorf("%w: stone %d has no colour", ErrMalformedDocument, i)
		}
		if !board.InBounds(s.At, d.N) {
			return fmt.Errorf("%w: stone %d at %s is off the board", ErrMalformedDocument, i, s.At)
		}
		if seen[s.At] {
			return fmt.Errorf("%w: %s listed twice", ErrMalformedDocument, s.At)
		}
		seen[s.At] = true
	}
	for _, p := range []struct {
		name  string
		point *Point
	}{{"start", d.Start}, {"goal", d.Goal}} {
		if p.point != nil && !board.InBounds(p.point.Coord(), d.N) {
			return fmt.Errorf("%w: %s %s is off the board", ErrMalformedDocument, p.name, p.point.Coord())
		}
	}
	if (d.Start == nil) != (d.Goal == nil) {
		return fmt.Errorf("%w: start and goal must be given together", ErrMalformedDocument)
	}
	return nil
}

// PointToPoint reports whether the document names its own endpoints.
func (d Document) PointToPoint() bool {
	return d.Start != nil && d.Goal != nil
}

// Build lays the stones on a fresh board. No captures are applied.
func (d Document) Build() (*board.Board, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := board.New(d.N)
	for _, s := range d.Stones {
		if err := b.Put(s.At, s.Color); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	}
	return b, nil
}

// FromBoard is the inverse of Build, listing stones row-major.
func FromBoard(b *board.Board) Document {
	doc := Document{N: b.Size()}
	for r := 0; r < b.Size(); r++ {
		for q := 0; q < b.Size(); q++ {
			c := board.Coord{R: r, Q: q}
			if color := b.At(c); color.IsPlayer() {
				doc.Stones = append(doc.Stones, Stone{Color: color, At: c})
			}
		}
	}
	return doc
}
