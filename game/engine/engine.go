package engine

import (
	"sync"

	"github.com/dropfour/dropfour/config"
)

// Game holds the full state of one drop-four game. All methods are safe for
// concurrent use; the internal mutex is the exclusion scope for every
// connection attached to the owning session.
type Game struct {
	mu      sync.Mutex
	board   config.Board
	grid    [][]Player // grid[col][row], row 0 is the bottom
	heights []int      // next free row per column
	moves   []Move
	winner  Player
}

// NewGame creates a game on the given board variant. The variant must have
// been validated by the config package.
func NewGame(board config.Board) *Game {
	grid := make([][]Player, board.Cols)
	for col := range grid {
		grid[col] = make([]Player, board.Rows)
	}
	return &Game{
		board:   board,
		grid:    grid,
		heights: make([]int, board.Cols),
	}
}

// turn returns the player whose move it is. Player1 always opens.
func (g *Game) turn() Player {
	if len(g.moves)%2 == 0 {
		return Player1
	}
	return Player2
}

// Play applies one move for the given player. It returns the row the piece
// settled into, the cumulative move count, and whether the move decided the
// game. Rule violations come back as one of the illegal-move errors and leave
// the game untouched.
func (g *Game) Play(player Player, column int) (PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.winner != "" {
		return PlayResult{}, ErrGameOver
	}
	if player != g.turn() {
		return PlayResult{}, ErrWrongTurn
	}
	if column < 0 || column >= g.board.Cols {
		return PlayResult{}, ErrOutOfRange
	}
	row := g.heights[column]
	if row >= g.board.Rows {
		return PlayResult{}, ErrColumnFull
	}

	g.grid[column][row] = player
	g.heights[column]++
	g.moves = append(g.moves, Move{Player: player, Column: column, Row: row})

	won := g.connects(player, column, row)
	if won {
		g.winner = player
	}

	return PlayResult{Row: row, Moves: len(g.moves), Won: won}, nil
}

// connects reports whether the piece just placed at (column, row) completes a
// line of the configured length.
func (g *Game) connects(player Player, column, row int) bool {
	dirs := [4][2]int{
		{1, 0},  // horizontal
		{0, 1},  // vertical
		{1, 1},  // rising diagonal
		{1, -1}, // falling diagonal
	}

	for _, d := range dirs {
		count := 1
		count += g.run(player, column, row, d[0], d[1])
		count += g.run(player, column, row, -d[0], -d[1])
		if count >= g.board.Connect {
			return true
		}
	}
	return false
}

// run counts consecutive pieces of player starting one step from (column,
// row) in direction (dc, dr).
func (g *Game) run(player Player, column, row, dc, dr int) int {
	count := 0
	for {
		column += dc
		row += dr
		if column < 0 || column >= g.board.Cols || row < 0 || row >= g.board.Rows {
			break
		}
		if g.grid[column][row] != player {
			break
		}
		count++
	}
	return count
}

// Moves returns an isolated snapshot of the move history, in play order. The
// snapshot stays valid while new moves are appended concurrently.
func (g *Game) Moves() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// MoveCount returns the number of moves played so far.
func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.moves)
}

// Winner returns the deciding player once the game is over.
func (g *Game) Winner() (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.winner != ""
}

// Board returns a copy of the grid, indexed [column][row] with row 0 at the
// bottom. Empty cells hold the zero Player.
func (g *Game) Board() [][]Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([][]Player, len(g.grid))
	for col := range g.grid {
		out[col] = make([]Player, len(g.grid[col]))
		copy(out[col], g.grid[col])
	}
	return out
}

// Config returns the board variant the game was created with.
func (g *Game) Config() config.Board {
	return g.board
}
