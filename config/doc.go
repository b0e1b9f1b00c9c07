// Package config resolves the broker's runtime configuration.
//
// Server-level settings (listen port, log output, allowed origin) come from
// the environment; the listen port defaults to 8001. A board variant may be
// supplied through a small YAML file referenced by BOARD_FILE:
//
//	rows: 6
//	cols: 7
//	connect: 4
//
// Unset fields fall back to the standard connect-four board.
package config
