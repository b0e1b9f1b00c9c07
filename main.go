// Command dropfour starts the realtime game broker.
//
// The broker exposes three surfaces on one listener:
//   - /ws        WebSocket transport for players and spectators
//   - /api, /healthz and static files over plain HTTP
//   - /mcp       read-only Model Context Protocol endpoint
//
// Flags control host/port and optional ngrok tunneling; everything else is
// driven by environment variables (see the config package).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/dropfour/dropfour/api"
	"github.com/dropfour/dropfour/config"
	"github.com/dropfour/dropfour/game/session"
	"github.com/dropfour/dropfour/transport/mcp"
	"github.com/dropfour/dropfour/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Drop Four Broker"
)

var (
	host         = flag.String("host", "", "listen host (overrides HOST)")
	port         = flag.Int("port", 0, "listen port (overrides PORT)")
	boardFile    = flag.String("board", "", "board variant YAML file (overrides BOARD_FILE)")
	version      = flag.Bool("version", false, "show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "expose the broker through an ngrok tunnel")
	ngrokDomain  = flag.String("ngrok-domain", "", "custom ngrok domain (optional)")
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	closeLog := setupLogging(cfg)
	defer closeLog()

	log.Info().Str("version", Version).Msg(AppName + " starting")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Broker failed")
	}
}

// applyFlags lets command line flags override the environment-driven
// configuration, matching the usual precedence: flags over env over
// defaults.
func applyFlags(cfg *config.Config) {
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
}

// setupLogging configures the global zerolog logger: console output always,
// plus the configured log file when file logging is enabled. It returns a
// function that flushes and closes the file sink.
func setupLogging(cfg *config.Config) func() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if !cfg.Server.Logging {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return func() {}
	}

	file, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		log.Warn().Err(err).Str("path", cfg.Server.LogFile).Msg("Could not open log file, console only")
		return func() {}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return func() { file.Close() }
}

// run wires the registry and all three transports onto one HTTP server and
// blocks until a shutdown signal arrives.
func run(cfg *config.Config) error {
	if *boardFile != "" {
		board, err := config.LoadBoard(*boardFile)
		if err != nil {
			return err
		}
		cfg.Board = board
	}

	registry := session.NewRegistry(cfg.Board)
	wsHandler := websocket.NewHandler(registry, cfg.Server.AllowedOrigin)
	apiServer := api.NewServer(registry, wsHandler, cfg.Server.StaticDir)
	mcpServer := mcp.NewServer(registry)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", mcpEndpoint(mcpServer))

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Int("rows", cfg.Board.Rows).
			Int("cols", cfg.Board.Cols).
			Int("connect", cfg.Board.Connect).
			Msg("Broker listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if *ngrokEnabled {
		go runNgrok(ctx, router)
	}

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("Broker stopped")
	return nil
}

// mcpEndpoint adapts the MCP server's message handler onto a plain HTTP
// POST endpoint.
func mcpEndpoint(mcpServer *mcp.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrok exposes the broker through an ngrok tunnel. The auth token comes
// from NGROK_AUTHTOKEN; a missing token disables the tunnel with a warning
// rather than stopping the broker.
func runNgrok(ctx context.Context, handler http.Handler) {
	authToken := os.Getenv("NGROK_AUTHTOKEN")
	if authToken == "" {
		log.Warn().Msg("Ngrok enabled but NGROK_AUTHTOKEN is not set, tunnel disabled")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if *ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(*ngrokDomain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}
	defer tun.Close()

	log.Info().Str("url", tun.URL()).Msg("Ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Ngrok server error")
	}
}
