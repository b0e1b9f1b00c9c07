// Package session tracks live games and the connections observing them.
//
// The package implements:
//   - Token-keyed session discovery (independent join and watch mappings)
//   - Unguessable access-token generation
//   - Per-session broadcast sets with mid-close tolerance
//   - Exactly-once teardown of registry entries
//
// Lifecycle:
//
// The connection that starts a game owns the registry entries: it calls
// Registry.Start before reading any player message and Registry.Unregister
// on every exit path. Joining and watching connections only ever add and
// remove themselves from the session's broadcast set; they never tear the
// session down.
//
// Tokens are capabilities. Whoever presents the join token plays as the
// second player, whoever presents the watch token spectates. Uniqueness is
// probabilistic, not enforced cryptographically; 96 bits of entropy keep
// collisions negligible.
package session
