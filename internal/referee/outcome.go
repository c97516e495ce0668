package referee

import (
	"errors"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/board"
)

var ErrIllegalAction = errors.New("illegal action")

type Status string

const (
	StatusRunning Status = "running"
	StatusRedWon  Status = "red_won"
	StatusBlueWon Status = "blue_won"
	StatusDraw    Status = "draw"
	StatusAborted Status = "aborted"
)

type Reason string

const (
	ReasonConnection    Reason = "connection"
	ReasonIllegalAction Reason = "illegal_action"
	ReasonPlayerError   Reason = "player_error"
	ReasonTimeout       Reason = "timeout"
	ReasonMaxTurns      Reason = "max_turns"
	ReasonRepeatedState Reason = "repeated_state"
	ReasonCancelled     Reason = "cancelled"
)

type Outcome struct {
	Status Status      `json:"status"`
	Winner board.Color `json:"winner"`
	Reason Reason      `json:"reason"`
	Turns  int         `json:"turns"`
	Detail string      `json:"detail,omitempty"`
}

func (o Outcome) Finished() bool {
	return o.Status != StatusRunning && o.Status != ""
}

// Result is the label used for metrics and standings: red, blue, draw or
// aborted.
func (o Outcome) Result() string {
	switch o.Status {
	case StatusRedWon:
		return "red"
	case StatusBlueWon:
		return "blue"
	case StatusDraw:
		return "draw"
	default:
		return "aborted"
	}
}

func winOutcome(winner board.Color, reason Reason, turns int) Outcome {
	status := StatusRedWon
	if winner == board.Blue {
		status = StatusBlueWon
	}
	return Outcome{Status: status, Winner: winner, Reason: reason, Turns: turns}
}
