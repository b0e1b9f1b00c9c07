// Package engine implements the drop-four game rules.
//
// A Game owns the board grid, the append-only move history, and the winner,
// which is set at most once. Moves are applied through Play, which enforces
// strict turn alternation (player one opens), column bounds, and column
// capacity, and reports the row each piece settles into.
//
// Concurrency:
//
// Every Game method takes the game's internal mutex, so a single Game can be
// shared by all connections of a session. Moves returns an isolated copy and
// is safe to iterate while the pipeline keeps appending; this is what the
// transport's replay relies on.
//
// Usage:
//
//	game := engine.NewGame(config.DefaultBoard())
//	res, err := game.Play(engine.Player1, 3)
//	if err != nil {
//		// illegal move, game unchanged
//	}
//	if res.Won {
//		winner, _ := game.Winner()
//		_ = winner
//	}
package engine
