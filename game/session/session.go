package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropfour/dropfour/game/engine"
)

// Conn is the session's view of an attached connection. Send queues a
// serialized event for delivery and reports false when the connection is
// closing; the session treats that as a no-op, not a failure.
type Conn interface {
	Send(payload []byte) bool
}

// Session is one in-progress or finished game plus the set of connections
// observing it. The game carries its own lock; the session's mutex guards
// only the broadcast set.
type Session struct {
	ID         string
	Game       *engine.Game
	JoinToken  string
	WatchToken string
	StartedAt  time.Time

	mu    sync.Mutex
	conns map[Conn]bool
}

func newSession(game *engine.Game, joinToken, watchToken string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Game:       game,
		JoinToken:  joinToken,
		WatchToken: watchToken,
		StartedAt:  time.Now(),
		conns:      make(map[Conn]bool),
	}
}

// Attach adds a connection to the broadcast set.
func (s *Session) Attach(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = true
}

// Detach removes a connection from the broadcast set. Detaching a connection
// that was never attached is a no-op.
func (s *Session) Detach(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// Broadcast delivers payload to every attached connection and returns the
// number of deliveries that were accepted. Connections that are mid-close
// are skipped without aborting the fan-out.
func (s *Session) Broadcast(payload []byte) int {
	s.mu.Lock()
	conns := make([]Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	delivered := 0
	for _, c := range conns {
		if c.Send(payload) {
			delivered++
		}
	}
	return delivered
}

// ConnCount returns the current size of the broadcast set.
func (s *Session) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
