package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Server holds the broker's process-level settings, supplied through the
// environment.
type Server struct {
	Host          string `env:"HOST" envDefault:""`
	Port          int    `env:"PORT" envDefault:"8001"`
	Logging       bool   `env:"LOGGING" envDefault:"false"`
	LogFile       string `env:"LOG_FILE" envDefault:"dropfour.log"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:""`
	StaticDir     string `env:"STATIC_DIR" envDefault:"./static"`
	BoardFile     string `env:"BOARD_FILE" envDefault:""`
}

// Board describes a board variant. The zero value is not usable; call
// DefaultBoard or load a variant file.
type Board struct {
	Rows    int `yaml:"rows"`
	Cols    int `yaml:"cols"`
	Connect int `yaml:"connect"`
}

// Config is the fully resolved broker configuration.
type Config struct {
	Server Server
	Board  Board
}

// DefaultBoard returns the standard 7-column, 6-row, connect-four board.
func DefaultBoard() Board {
	return Board{Rows: 6, Cols: 7, Connect: 4}
}

// Validate checks that a board variant is playable.
func (b Board) Validate() error {
	if b.Rows < 4 || b.Rows > 20 {
		return fmt.Errorf("board rows must be between 4 and 20, got %d", b.Rows)
	}
	if b.Cols < 4 || b.Cols > 20 {
		return fmt.Errorf("board cols must be between 4 and 20, got %d", b.Cols)
	}
	if b.Connect < 3 || b.Connect > b.Rows || b.Connect > b.Cols {
		return fmt.Errorf("connect length %d does not fit a %dx%d board", b.Connect, b.Rows, b.Cols)
	}
	return nil
}

// LoadBoard reads a board variant from a YAML file. Fields missing from the
// file keep their default values.
func LoadBoard(path string) (Board, error) {
	board := DefaultBoard()

	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("read board file: %w", err)
	}
	if err := yaml.Unmarshal(data, &board); err != nil {
		return Board{}, fmt.Errorf("parse board file: %w", err)
	}
	if err := board.Validate(); err != nil {
		return Board{}, err
	}
	return board, nil
}

// Load resolves the full configuration: server settings from the environment,
// then the board variant from BOARD_FILE when one is set.
func Load() (*Config, error) {
	cfg := &Config{Board: DefaultBoard()}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}

	if cfg.Server.BoardFile != "" {
		board, err := LoadBoard(cfg.Server.BoardFile)
		if err != nil {
			return nil, err
		}
		cfg.Board = board
	}

	return cfg, nil
}

// Addr returns the host:port the broker listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
