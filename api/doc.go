// Package api exposes the broker over HTTP: the /ws WebSocket endpoint, a
// /healthz probe, read-only JSON stats under /api, and the static browser
// client. Everything it reports is derived from the live session registry;
// it never exposes join or watch tokens.
package api
