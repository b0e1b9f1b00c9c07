package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dropfour/dropfour/game/engine"
	"github.com/dropfour/dropfour/game/session"
)

// Server exposes read-only broker tools over the Model Context Protocol.
// Tools resolve games the same way spectators do: by watch token. The join
// token grants play access and is never accepted or revealed here.
type Server struct {
	registry  *session.Registry
	mcpServer *server.MCPServer
	startedAt time.Time
}

// NewServer creates an MCP server bound to the session registry.
func NewServer(registry *session.Registry) *Server {
	s := &Server{
		registry:  registry,
		startedAt: time.Now(),
	}

	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Drop Four Broker",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Drop Four Broker - MCP Interface

Read-only view of a realtime two-player Connect Four broker.

AVAILABLE TOOLS:
- server_stats: Session, connection and move counts for the whole broker
- watch_game: Render a game's board and move history by its watch token

Watch tokens are handed out by the player who started a game. There is no
way to enumerate or guess them through this interface.`),
	)

	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get session, connection and move counts for the broker",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleServerStats)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "watch_game",
		Description: "Render the board and move history of a game, addressed by its watch token",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"watch_token": map[string]interface{}{
					"type":        "string",
					"description": "The game's watch token, as shared by the player who started it",
				},
			},
			Required: []string{"watch_token"},
		},
	}, s.handleWatchGame)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.registry.Sessions()

	connections := 0
	moves := 0
	finished := 0
	for _, sess := range sessions {
		connections += sess.ConnCount()
		moves += sess.Game.MoveCount()
		if _, over := sess.Game.Winner(); over {
			finished++
		}
	}

	result := fmt.Sprintf(`Broker Stats
Sessions: %d (%d finished)
Connections: %d
Moves played: %d
Uptime: %s`,
		len(sessions), finished, connections, moves,
		time.Since(s.startedAt).Round(time.Second))

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleWatchGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	token, _ := args["watch_token"].(string)
	if token == "" {
		return mcp.NewToolResultError("watch_token is required"), nil
	}

	sess, err := s.registry.ResolveWatch(token)
	if err != nil {
		return mcp.NewToolResultError("Game not found."), nil
	}

	return mcp.NewToolResultText(formatGame(sess)), nil
}

// Formatting helpers

func formatGame(sess *session.Session) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Game %s\n", sess.ID))
	b.WriteString(fmt.Sprintf("Started: %s | Connections: %d\n\n",
		sess.StartedAt.Format("2006-01-02 15:04:05"), sess.ConnCount()))

	b.WriteString(formatBoard(sess.Game))

	moves := sess.Game.Moves()
	b.WriteString(fmt.Sprintf("\nMoves (%d):\n", len(moves)))
	for i, m := range moves {
		b.WriteString(fmt.Sprintf("%d. %s column %d row %d\n", i+1, m.Player, m.Column, m.Row))
	}

	if winner, over := sess.Game.Winner(); over {
		b.WriteString(fmt.Sprintf("\nWinner: %s\n", winner))
	} else if len(moves) > 0 {
		b.WriteString("\nGame in progress\n")
	} else {
		b.WriteString("\nWaiting for the first move\n")
	}

	return b.String()
}

// formatBoard renders the grid top row first, the way a player sees it.
func formatBoard(g *engine.Game) string {
	grid := g.Board()
	board := g.Config()

	var b strings.Builder
	for row := board.Rows - 1; row >= 0; row-- {
		for col := 0; col < board.Cols; col++ {
			b.WriteString(cellChar(grid[col][row]))
		}
		b.WriteString("\n")
	}
	for col := 0; col < board.Cols; col++ {
		b.WriteString(fmt.Sprintf("%d", col%10))
	}
	b.WriteString("\n")
	return b.String()
}

func cellChar(p engine.Player) string {
	switch p {
	case engine.Player1:
		return "R"
	case engine.Player2:
		return "Y"
	default:
		return "."
	}
}
