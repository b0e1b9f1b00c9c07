// Package mcp provides a Model Context Protocol view of the broker.
//
// The package exposes read-only tools for AI agents:
//   - server_stats: session, connection and move counts for the broker
//   - watch_game: board rendering and move history by watch token
//
// Access follows the spectator model: a tool caller must hold a game's
// watch token to see it, exactly like a WebSocket spectator. Tools never
// accept or reveal join tokens and cannot submit moves, so an MCP client
// can observe games but not influence them.
//
// The server is mounted on the broker's HTTP mux via HandleMessage, sharing
// the process and the live session registry with the WebSocket transport.
package mcp
