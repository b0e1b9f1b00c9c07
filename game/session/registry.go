package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/dropfour/dropfour/config"
	"github.com/dropfour/dropfour/game/engine"
)

var (
	ErrSessionNotFound = errors.New("game not found")
	ErrTokenInUse      = errors.New("join token already in use")
)

// tokenBytes gives 96 bits of entropy, enough to make collisions and guesses
// negligible over the registry's lifetime.
const tokenBytes = 12

// NewToken returns an unguessable URL-safe access token.
func NewToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Registry maps access tokens to live sessions. The join and watch mappings
// are independent: each token grants exactly one role.
type Registry struct {
	board config.Board

	mu    sync.RWMutex
	join  map[string]*Session
	watch map[string]*Session
}

// NewRegistry creates an empty registry whose sessions play on the given
// board variant.
func NewRegistry(board config.Board) *Registry {
	return &Registry{
		board: board,
		join:  make(map[string]*Session),
		watch: make(map[string]*Session),
	}
}

// Start creates a new session and registers its tokens. When joinSeed is
// non-empty it becomes the join token, letting the creator pick a memorable
// join identifier; a seed already held by a live session is rejected. The
// watch token is always freshly generated.
//
// The session is resolvable the moment Start returns, so the caller must
// already be prepared to accept joiners.
func (r *Registry) Start(joinSeed string) (*Session, error) {
	joinToken := joinSeed
	if joinToken == "" {
		joinToken = NewToken()
	}
	watchToken := NewToken()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.join[joinToken]; taken {
		return nil, ErrTokenInUse
	}

	sess := newSession(engine.NewGame(r.board), joinToken, watchToken)
	r.join[joinToken] = sess
	r.watch[watchToken] = sess
	return sess, nil
}

// ResolveJoin looks up a session by join token. An unknown or already
// unregistered token yields ErrSessionNotFound; this is a recoverable
// condition, not a fault.
func (r *Registry) ResolveJoin(token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.join[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ResolveWatch looks up a session by watch token.
func (r *Registry) ResolveWatch(token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.watch[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Unregister removes both of the session's tokens. It is idempotent; the
// starting flow calls it on every exit path. Connections still holding the
// session keep using it until they unwind, but no new join or watch can
// resolve it afterwards.
func (r *Registry) Unregister(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Only delete entries that still point at this session, so a reused
	// join seed can't be torn down by a stale unregister.
	if cur, ok := r.join[sess.JoinToken]; ok && cur == sess {
		delete(r.join, sess.JoinToken)
	}
	if cur, ok := r.watch[sess.WatchToken]; ok && cur == sess {
		delete(r.watch, sess.WatchToken)
	}
}

// Sessions returns a snapshot of the registered sessions, in no particular
// order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.join))
	for _, sess := range r.join {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.join)
}
