package main

import (
	"testing"

	"github.com/dropfour/dropfour/config"
)

func loadTestConfig(t *testing.T) (*config.Config, error) {
	t.Helper()

	t.Setenv("HOST", "")
	t.Setenv("PORT", "8001")
	t.Setenv("BOARD_FILE", "")
	return config.Load()
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestFlagDefaults(t *testing.T) {
	// zero values mean "no override"; the environment keeps precedence
	if *host != "" {
		t.Errorf("host flag should default to empty, got %q", *host)
	}
	if *port != 0 {
		t.Errorf("port flag should default to 0, got %d", *port)
	}
	if *boardFile != "" {
		t.Errorf("board flag should default to empty, got %q", *boardFile)
	}
	if *ngrokEnabled {
		t.Error("ngrok flag should default to false")
	}
}

func TestApplyFlags(t *testing.T) {
	cfg, err := loadTestConfig(t)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	origHost, origPort := *host, *port
	defer func() { *host, *port = origHost, origPort }()

	*host = "0.0.0.0"
	*port = 9200
	applyFlags(cfg)

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9200 {
		t.Errorf("flags should override the environment, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Addr() != "0.0.0.0:9200" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestApplyFlagsNoOverride(t *testing.T) {
	cfg, err := loadTestConfig(t)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := cfg.Server.Port
	applyFlags(cfg)

	if cfg.Server.Port != want {
		t.Errorf("zero flags must not override, got %d", cfg.Server.Port)
	}
}
