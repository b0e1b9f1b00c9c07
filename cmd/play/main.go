// Command play is a terminal client for the broker. It can start a game,
// join one by its join token, or spectate by watch token, rendering the
// board after every broadcast.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	ws "github.com/dropfour/dropfour/transport/websocket"
)

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "terminal client for the Drop Four broker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "broker WebSocket URL",
				Value:   "ws://localhost:8001/ws",
				Sources: cli.EnvVars("DROPFOUR_SERVER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "start a new game and play as red",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "join",
						Usage: "memorable join token for the other player (optional)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runSession(cmd.String("server"), ws.Event{
						Type:     ws.EventInit,
						JoinSeed: cmd.String("join"),
					}, true)
				},
			},
			{
				Name:      "join",
				Usage:     "join a game by its join token and play as yellow",
				ArgsUsage: "TOKEN",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					token := cmd.Args().First()
					if token == "" {
						return fmt.Errorf("join requires a token argument")
					}
					return runSession(cmd.String("server"), ws.Event{
						Type: ws.EventInit,
						Join: token,
					}, true)
				},
			},
			{
				Name:      "watch",
				Usage:     "spectate a game by its watch token",
				ArgsUsage: "TOKEN",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					token := cmd.Args().First()
					if token == "" {
						return fmt.Errorf("watch requires a token argument")
					}
					return runSession(cmd.String("server"), ws.Event{
						Type:  ws.EventInit,
						Watch: token,
					}, false)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runSession connects, performs the handshake, and splits into a broadcast
// reader and, for players, a stdin move loop.
func runSession(serverURL string, handshake ws.Event, interactive bool) error {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(serverURL, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverURL, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(handshake); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- readLoop(conn) }()

	if !interactive {
		return <-done
	}

	go moveLoop(conn)
	return <-done
}

// readLoop renders every broadcast until the connection closes.
func readLoop(conn *websocket.Conn) error {
	view := newBoardView(6, 7)

	for {
		var ev ws.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		switch ev.Type {
		case ws.EventInit:
			fmt.Printf("Playing as %s\n", ev.Player)
			if ev.Join != "" {
				fmt.Printf("  join token:  %s\n", ev.Join)
			}
			if ev.Watch != "" {
				fmt.Printf("  watch token: %s\n", ev.Watch)
			}
			if ev.Player != ws.RoleSpectator {
				fmt.Println("Enter a column number to play, or q to quit.")
			}
		case ws.EventPlay:
			if ev.Column == nil || ev.Row == nil {
				continue
			}
			view.place(*ev.Column, *ev.Row, ev.Player)
			fmt.Printf("Move %d: %s plays column %d\n", ev.Moves, ev.Player, *ev.Column)
			view.render(os.Stdout)
		case ws.EventWin:
			fmt.Printf("%s wins!\n", ev.Player)
		case ws.EventError:
			fmt.Println("!", ev.Message)
		}
	}
}

// moveLoop reads column numbers from stdin and submits them as moves.
func moveLoop(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		column, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("! enter a column number")
			continue
		}
		if err := conn.WriteJSON(ws.Event{Type: ws.EventPlay, Column: &column}); err != nil {
			return
		}
	}
}

// boardView is the client-side rendering of the grid, row 0 at the bottom.
// It grows to fit whatever coordinates the broker sends, so non-default
// board variants render correctly without the client knowing their size.
type boardView struct {
	rows, cols int
	cells      map[[2]int]string
}

func newBoardView(rows, cols int) *boardView {
	return &boardView{rows: rows, cols: cols, cells: make(map[[2]int]string)}
}

func (v *boardView) place(column, row int, player string) {
	if row >= v.rows {
		v.rows = row + 1
	}
	if column >= v.cols {
		v.cols = column + 1
	}
	v.cells[[2]int{column, row}] = player
}

func (v *boardView) render(w *os.File) {
	for row := v.rows - 1; row >= 0; row-- {
		for col := 0; col < v.cols; col++ {
			switch v.cells[[2]int{col, row}] {
			case "red":
				fmt.Fprint(w, " R")
			case "yellow":
				fmt.Fprint(w, " Y")
			default:
				fmt.Fprint(w, " .")
			}
		}
		fmt.Fprintln(w)
	}
	for col := 0; col < v.cols; col++ {
		fmt.Fprintf(w, " %d", col%10)
	}
	fmt.Fprintln(w)
}
