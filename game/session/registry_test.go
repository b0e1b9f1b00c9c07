package session

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dropfour/dropfour/config"
)

func newTestRegistry() *Registry {
	return NewRegistry(config.DefaultBoard())
}

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := NewToken()
		if len(token) != 16 {
			t.Fatalf("expected 16-character token, got %q (%d)", token, len(token))
		}
		if strings.ContainsAny(token, "+/=") {
			t.Fatalf("token %q is not URL-safe", token)
		}
		if seen[token] {
			t.Fatalf("token %q generated twice", token)
		}
		seen[token] = true
	}
}

func TestStartAndResolve(t *testing.T) {
	reg := newTestRegistry()

	sess, err := reg.Start("")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.JoinToken == "" || sess.WatchToken == "" {
		t.Error("expected both tokens to be generated")
	}
	if sess.JoinToken == sess.WatchToken {
		t.Error("join and watch tokens must be independent")
	}
	if sess.Game == nil {
		t.Fatal("session has no game")
	}

	byJoin, err := reg.ResolveJoin(sess.JoinToken)
	if err != nil {
		t.Fatalf("ResolveJoin failed: %v", err)
	}
	if byJoin != sess {
		t.Error("ResolveJoin returned a different session")
	}

	byWatch, err := reg.ResolveWatch(sess.WatchToken)
	if err != nil {
		t.Fatalf("ResolveWatch failed: %v", err)
	}
	if byWatch != sess {
		t.Error("ResolveWatch returned a different session")
	}

	// the mappings are independent
	if _, err := reg.ResolveJoin(sess.WatchToken); !errors.Is(err, ErrSessionNotFound) {
		t.Error("watch token must not resolve as a join token")
	}
	if _, err := reg.ResolveWatch(sess.JoinToken); !errors.Is(err, ErrSessionNotFound) {
		t.Error("join token must not resolve as a watch token")
	}
}

func TestStartWithSeed(t *testing.T) {
	reg := newTestRegistry()

	sess, err := reg.Start("friday-night")
	if err != nil {
		t.Fatalf("Start with seed failed: %v", err)
	}
	if sess.JoinToken != "friday-night" {
		t.Errorf("expected seed to become the join token, got %q", sess.JoinToken)
	}

	if _, err := reg.Start("friday-night"); !errors.Is(err, ErrTokenInUse) {
		t.Errorf("reusing a live seed should fail with ErrTokenInUse, got %v", err)
	}

	// the seed becomes available again after teardown
	reg.Unregister(sess)
	if _, err := reg.Start("friday-night"); err != nil {
		t.Errorf("seed should be reusable after unregister, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	reg := newTestRegistry()

	if _, err := reg.ResolveJoin("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := reg.ResolveWatch("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	// failed lookups must not create entries
	if reg.Count() != 0 {
		t.Errorf("expected empty registry, got %d sessions", reg.Count())
	}
}

func TestUnregister(t *testing.T) {
	reg := newTestRegistry()

	sess, err := reg.Start("")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	reg.Unregister(sess)

	if _, err := reg.ResolveJoin(sess.JoinToken); !errors.Is(err, ErrSessionNotFound) {
		t.Error("join token should be unresolvable after unregister")
	}
	if _, err := reg.ResolveWatch(sess.WatchToken); !errors.Is(err, ErrSessionNotFound) {
		t.Error("watch token should be unresolvable after unregister")
	}
	if reg.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", reg.Count())
	}

	// idempotent
	reg.Unregister(sess)
}

func TestUnregisterStaleSeed(t *testing.T) {
	reg := newTestRegistry()

	first, err := reg.Start("rematch")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	reg.Unregister(first)

	second, err := reg.Start("rematch")
	if err != nil {
		t.Fatalf("Start after unregister failed: %v", err)
	}

	// a late duplicate unregister of the first session must not tear down
	// the second one
	reg.Unregister(first)

	if got, err := reg.ResolveJoin("rematch"); err != nil || got != second {
		t.Errorf("stale unregister removed the live session: %v", err)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := reg.Start("")
			if err != nil {
				t.Errorf("Start failed: %v", err)
				return
			}
			if _, err := reg.ResolveWatch(sess.WatchToken); err != nil {
				t.Errorf("ResolveWatch failed: %v", err)
			}
			reg.Unregister(sess)
		}()
	}
	wg.Wait()

	if reg.Count() != 0 {
		t.Errorf("expected empty registry after concurrent churn, got %d", reg.Count())
	}
}
