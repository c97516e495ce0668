package board

import "fmt"

type ActionKind uint8

const (
	ActionPlace ActionKind = iota
	ActionSteal
)

// Action is what a player submits for its turn.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Coord Coord      `json:"coord"`
}

func Place(r, q int) Action {
	return Action{Kind: ActionPlace, Coord: Coord{R: r, Q: q}}
}

func PlaceAt(c Coord) Action {
	return Action{Kind: ActionPlace, Coord: c}
}

func Steal() Action {
	return Action{Kind: ActionSteal}
}

func (a Action) IsSteal() bool {
	return a.Kind == ActionSteal
}

func (a Action) String() string {
	if a.Kind == ActionSteal {
		return "STEAL"
	}
	return fmt.Sprintf("PLACE %d %d", a.Coord.R, a.Coord.Q)
}

func (k ActionKind) MarshalText() ([]byte, error) {
	if k == ActionSteal {
		return []byte("steal"), nil
	}
	return []byte("place"), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "place", "PLACE":
		*k = ActionPlace
	case "steal", "STEAL":
		*k = ActionSteal
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, text)
	}
	return nil
}

// MoveRecord is everything Undo needs to reverse an applied action.
type MoveRecord struct {
	Kind     ActionKind
	Color    Color
	Coord    Coord
	Captured []Coord
}

func (m MoveRecord) Action() Action {
	return Action{Kind: m.Kind, Coord: m.Coord}
}
