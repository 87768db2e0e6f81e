package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/munscan/internal/config"
)

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()
	for _, name := range []string{"listen", "roster", "db-dir", "no-auto-checkin", "log-json"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if got := cmd.Flags().Lookup("listen").DefValue; got != config.DefaultListenAddress {
		t.Errorf("expected listen default %q, got %q", config.DefaultListenAddress, got)
	}
}

func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override the server section", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "munscan.yaml")
		content := "server:\n  listen: 0.0.0.0:80\n  roster: file.json\n  auto_checkin: true\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		dbDir := t.TempDir()

		cfg, err := buildServeConfig(subcommand(t, "serve",
			"-c", path,
			"-l", "127.0.0.1:0",
			"--db-dir", dbDir,
			"--no-auto-checkin",
		))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "127.0.0.1:0" {
			t.Errorf("ListenAddress = %q", cfg.ListenAddress)
		}
		if cfg.RosterPath != "file.json" {
			t.Errorf("RosterPath = %q", cfg.RosterPath)
		}
		if cfg.DBDir != dbDir {
			t.Errorf("DBDir = %q", cfg.DBDir)
		}
		if cfg.AutoCheckIn {
			t.Error("expected auto check-in to be off")
		}
	})

	t.Run("auto check-in stays on by default", func(t *testing.T) {
		t.Parallel()
		cfg, err := buildServeConfig(subcommand(t, "serve", "-c", emptyConfig(t)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.AutoCheckIn {
			t.Error("expected auto check-in to be on")
		}
		if cfg.DBDir != config.XDGDataDir() {
			t.Errorf("DBDir = %q", cfg.DBDir)
		}
	})
}

func TestRunServeCmd(t *testing.T) {
	t.Parallel()

	t.Run("fails for a missing roster", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"serve",
			"-c", emptyConfig(t),
			"-r", filepath.Join(t.TempDir(), "missing.json"),
			"--db-dir", t.TempDir(),
		})
		if err := root.Execute(); err == nil {
			t.Error("expected error for a missing roster")
		}
	})

	t.Run("rejects an empty roster path", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"serve", "-c", emptyConfig(t), "-r", ""})
		if err := root.Execute(); !errors.Is(err, config.ErrNoRoster) {
			t.Errorf("expected ErrNoRoster, got %v", err)
		}
	})
}
