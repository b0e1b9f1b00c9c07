package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/dropfour/dropfour/game/engine"
)

// Event type discriminators.
const (
	EventInit  = "init"
	EventPlay  = "play"
	EventWin   = "win"
	EventError = "error"
)

// Connection roles announced in the init event.
const (
	RolePlayer1   = "player1"
	RolePlayer2   = "player2"
	RoleSpectator = "spectator"
)

// Event is the wire-level message exchanged with clients. One struct covers
// the whole discriminated union; unused fields are omitted. Column and Row
// are pointers so that a play in column 0 or a landing row of 0 survives
// omitempty, and so a missing column is distinguishable from column 0 on the
// way in.
type Event struct {
	Type     string `json:"type"`
	Player   string `json:"player,omitempty"`
	Column   *int   `json:"column,omitempty"`
	Row      *int   `json:"row,omitempty"`
	Moves    int    `json:"moves,omitempty"`
	Join     string `json:"join,omitempty"`
	Watch    string `json:"watch,omitempty"`
	JoinSeed string `json:"joinID,omitempty"`
	Start    string `json:"start,omitempty"`
	Message  string `json:"message,omitempty"`
}

// decodeEvent parses a raw client message.
func decodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("malformed event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	return ev, nil
}

// playEvent builds the broadcast for one applied move. moves is the
// cumulative move count as of this move, which lets consumers reconcile
// replayed and live deliveries.
func playEvent(player engine.Player, column, row, moves int) Event {
	return Event{
		Type:   EventPlay,
		Player: string(player),
		Column: &column,
		Row:    &row,
		Moves:  moves,
	}
}

func winEvent(player engine.Player) Event {
	return Event{Type: EventWin, Player: string(player)}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// marshalEvent serializes an event for the broadcast set. Events are plain
// data, so marshaling cannot fail at runtime; a failure here is a
// programming error.
func marshalEvent(ev Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		panic(err)
	}
	return data
}
