package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dropfour/dropfour/config"
	"github.com/dropfour/dropfour/game/engine"
	"github.com/dropfour/dropfour/game/session"
)

func newTestMCP(t *testing.T) (*Server, *session.Registry) {
	t.Helper()

	registry := session.NewRegistry(config.DefaultBoard())
	srv := NewServer(registry)
	if srv.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}
	return srv, registry
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("expected text content in result")
	}
	return text.Text
}

func TestServerStats(t *testing.T) {
	srv, registry := newTestMCP(t)

	sess, err := registry.Start("")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := sess.Game.Play(engine.Player1, 0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	result, err := srv.handleServerStats(context.Background(), callRequest("server_stats", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleServerStats failed: %v", err)
	}

	text := textContent(t, result)
	for _, want := range []string{"Sessions: 1", "Moves played: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in stats, got: %s", want, text)
		}
	}
}

func TestWatchGame(t *testing.T) {
	srv, registry := newTestMCP(t)

	sess, err := registry.Start("")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := sess.Game.Play(engine.Player1, 3); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if _, err := sess.Game.Play(engine.Player2, 3); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	result, err := srv.handleWatchGame(context.Background(), callRequest("watch_game", map[string]interface{}{
		"watch_token": sess.WatchToken,
	}))
	if err != nil {
		t.Fatalf("handleWatchGame failed: %v", err)
	}

	text := textContent(t, result)
	for _, want := range []string{
		sess.ID,
		"1. red column 3 row 0",
		"2. yellow column 3 row 1",
		"Game in progress",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in rendering, got: %s", want, text)
		}
	}
	if strings.Contains(text, sess.JoinToken) {
		t.Error("rendering must not contain the join token")
	}
}

func TestWatchGameUnknownToken(t *testing.T) {
	srv, _ := newTestMCP(t)

	result, err := srv.handleWatchGame(context.Background(), callRequest("watch_game", map[string]interface{}{
		"watch_token": "no-such-token",
	}))
	if err != nil {
		t.Fatalf("handleWatchGame failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an unknown token")
	}
}

func TestWatchGameMissingToken(t *testing.T) {
	srv, _ := newTestMCP(t)

	result, err := srv.handleWatchGame(context.Background(), callRequest("watch_game", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleWatchGame failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result when watch_token is absent")
	}
}

func TestFormatBoard(t *testing.T) {
	game := engine.NewGame(config.DefaultBoard())
	if _, err := game.Play(engine.Player1, 0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if _, err := game.Play(engine.Player2, 1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	rendering := formatBoard(game)
	lines := strings.Split(strings.TrimSuffix(rendering, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 6 board rows plus a column ruler, got %d lines", len(lines))
	}

	// bottom row of the board, rendered second to last
	if lines[5] != "RY....." {
		t.Errorf("unexpected bottom row %q", lines[5])
	}
	if lines[0] != "......." {
		t.Errorf("unexpected top row %q", lines[0])
	}
	if lines[6] != "0123456" {
		t.Errorf("unexpected column ruler %q", lines[6])
	}
}
