package engine

import "errors"

// Player identifies one of the two piece colors.
type Player string

const (
	Player1 Player = "red"
	Player2 Player = "yellow"
)

// Illegal-move conditions. The message text is sent to clients verbatim, so
// keep it readable.
var (
	ErrGameOver   = errors.New("game is already over")
	ErrWrongTurn  = errors.New("it isn't your turn")
	ErrColumnFull = errors.New("this column is full")
	ErrOutOfRange = errors.New("column is out of range")
)

// IsIllegalMove reports whether err is a rule violation that the submitting
// player should be told about, as opposed to a programming error.
func IsIllegalMove(err error) bool {
	return errors.Is(err, ErrGameOver) ||
		errors.Is(err, ErrWrongTurn) ||
		errors.Is(err, ErrColumnFull) ||
		errors.Is(err, ErrOutOfRange)
}

// Move records one piece drop. Row is the row the piece settled into,
// counting from the bottom of the board.
type Move struct {
	Player Player `json:"player"`
	Column int    `json:"column"`
	Row    int    `json:"row"`
}

// PlayResult describes a successfully applied move.
type PlayResult struct {
	Row   int
	Moves int
	Won   bool
}
