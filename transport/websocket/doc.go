// Package websocket is the broker's client-facing transport.
//
// Each connection is owned by one goroutine for its entire lifetime. The
// dispatcher reads exactly one handshake message and routes the connection
// into one of three flows:
//
//   - start: create a game, register its join/watch tokens, play as player1
//   - join: resolve a join token, replay history, play as player2
//   - watch: resolve a watch token, replay history, then only listen
//
// Message Protocol:
//
// Events are compact JSON objects with a "type" discriminator:
//
//	client → server  {"type":"init"}                      start a game
//	client → server  {"type":"init","joinID":"friday"}    start with a chosen join token
//	client → server  {"type":"init","join":"<token>"}     join as player2
//	client → server  {"type":"init","watch":"<token>"}    spectate
//	client → server  {"type":"play","column":3}           submit a move
//	server → client  init, play, win, error
//
// Cleanup:
//
// Every flow removes its own broadcast-set membership on exit, and the start
// flow additionally unregisters the session's tokens, whatever the exit
// cause. Errors never cross connections: an illegal move or a malformed
// message affects only the connection that produced it.
//
// Ordering:
//
// Replay iterates a snapshot of the move history while live broadcasts keep
// flowing, so a joining view can see a move twice or transiently out of
// order. Each play event carries the cumulative move index, which is enough
// for consumers to converge on the same final move list.
package websocket
