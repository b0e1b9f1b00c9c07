package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dropfour/dropfour/game/engine"
	"github.com/dropfour/dropfour/game/session"
)

// lookupFailed is the wire message for an unknown join or watch token.
const lookupFailed = "Game not found."

// Handler owns the WebSocket side of the broker: it upgrades connections,
// classifies their handshake, and runs exactly one flow per connection.
type Handler struct {
	registry *session.Registry
	upgrader websocket.Upgrader
}

// NewHandler creates a handler bound to a session registry. When
// allowedOrigin is empty any origin may connect.
func NewHandler(registry *session.Registry, allowedOrigin string) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// ServeWS upgrades an HTTP request and hands the connection to its own
// dispatch task. It returns immediately; the connection's flow owns all
// further work and cleanup.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	client := newClient(conn)
	log.Info().Str("conn", client.ID()).Str("remote", r.RemoteAddr).Msg("Connection established")

	go client.writePump()
	go h.dispatch(client)
}

// dispatch reads the single handshake message and routes the connection to
// the start, join, or watch flow. The deferred close runs after the chosen
// flow returns, so every exit path flushes queued events and drops the
// connection.
func (h *Handler) dispatch(c *Client) {
	defer c.close()

	ev, err := c.readEvent()
	if err != nil {
		log.Warn().Err(err).Str("conn", c.ID()).Msg("Handshake not received")
		return
	}
	if ev.Type != EventInit {
		log.Warn().Str("conn", c.ID()).Str("type", ev.Type).Msg("Handshake must be an init event")
		return
	}

	switch {
	case ev.Join != "":
		h.join(c, ev.Join)
	case ev.Watch != "":
		h.watch(c, ev.Watch)
	default:
		h.start(c, ev.JoinSeed)
	}

	log.Info().Str("conn", c.ID()).Msg("Connection closed")
}

// start creates a session and plays it as the first player. This is the only
// flow that registers tokens, and the deferred unregister is the only place
// they are removed: it runs on normal close, protocol violations, and
// process shutdown alike.
func (h *Handler) start(c *Client, joinSeed string) {
	sess, err := h.registry.Start(joinSeed)
	if err != nil {
		// a live session already holds the requested join seed
		c.sendEvent(errorEvent(err.Error()))
		return
	}
	defer h.registry.Unregister(sess)

	sess.Attach(c)
	defer sess.Detach(c)

	log.Info().Str("conn", c.ID()).Str("session", sess.ID).Msg("Session started")

	c.sendEvent(Event{
		Type:   EventInit,
		Player: RolePlayer1,
		Join:   sess.JoinToken,
		Watch:  sess.WatchToken,
		Start:  sess.ID,
	})

	h.pipeline(c, sess, engine.Player1)
}

// join attaches the connection to an existing session as the second player.
func (h *Handler) join(c *Client, token string) {
	sess, err := h.registry.ResolveJoin(token)
	if err != nil {
		c.sendEvent(errorEvent(lookupFailed))
		return
	}

	sess.Attach(c)
	defer sess.Detach(c)

	log.Info().Str("conn", c.ID()).Str("session", sess.ID).Msg("Second player joined")

	c.sendEvent(Event{
		Type:   EventInit,
		Player: RolePlayer2,
		Join:   sess.JoinToken,
		Watch:  sess.WatchToken,
		Start:  sess.ID,
	})

	h.replay(c, sess)
	h.pipeline(c, sess, engine.Player2)
}

// watch attaches the connection to an existing session as a spectator.
// Spectators never submit moves; any inbound message is a protocol violation
// that terminates the connection.
func (h *Handler) watch(c *Client, token string) {
	sess, err := h.registry.ResolveWatch(token)
	if err != nil {
		c.sendEvent(errorEvent(lookupFailed))
		return
	}

	sess.Attach(c)
	defer sess.Detach(c)

	log.Info().Str("conn", c.ID()).Str("session", sess.ID).Msg("Spectator attached")

	c.sendEvent(Event{
		Type:   EventInit,
		Player: RoleSpectator,
		Watch:  sess.WatchToken,
		Start:  sess.ID,
	})

	h.replay(c, sess)

	// spectators only listen; the next read ends the flow either way
	if _, err := c.readEvent(); err == nil {
		log.Warn().Str("conn", c.ID()).Str("session", sess.ID).Msg("Spectator sent a message, dropping connection")
	}
}

// replay streams the session's move history to a newly attached connection.
// It iterates an isolated snapshot: moves played while the replay is in
// flight reach this connection again through the live broadcast, and the
// move index on each event lets the consumer reconcile the two streams.
func (h *Handler) replay(c *Client, sess *session.Session) {
	for i, m := range sess.Game.Moves() {
		c.sendEvent(playEvent(m.Player, m.Column, m.Row, i+1))
	}
}

// pipeline consumes play events from one player connection until it closes.
// Illegal moves bounce back to the submitter only; applied moves are
// broadcast to the whole session, the submitter included, so every view is
// driven purely by broadcast events.
func (h *Handler) pipeline(c *Client, sess *session.Session, player engine.Player) {
	for {
		ev, err := c.readEvent()
		if err != nil {
			// transport closed or unparseable payload; either way this
			// connection's flow is over
			return
		}
		if ev.Type != EventPlay || ev.Column == nil {
			log.Warn().Str("conn", c.ID()).Str("type", ev.Type).Msg("Expected a play event with a column")
			return
		}

		res, err := sess.Game.Play(player, *ev.Column)
		if err != nil {
			if !engine.IsIllegalMove(err) {
				log.Error().Err(err).Str("session", sess.ID).Msg("Move failed")
			}
			c.sendEvent(errorEvent(err.Error()))
			continue
		}

		sess.Broadcast(marshalEvent(playEvent(player, *ev.Column, res.Row, res.Moves)))

		// Won is true only on the move that decided the game, so the win
		// event goes out exactly once per session.
		if res.Won {
			log.Info().Str("session", sess.ID).Str("winner", string(player)).Msg("Game decided")
			sess.Broadcast(marshalEvent(winEvent(player)))
		}
	}
}
