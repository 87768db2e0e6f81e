package main

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/nao1215/munscan/internal/config"
)

// writeBadge writes a PNG frame showing a QR code with text.
func writeBadge(t *testing.T, path, text string) {
	t.Helper()
	img, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	if err != nil {
		t.Fatalf("failed to encode QR code: %v", err)
	}
	f, err := os.Create(path) //nolint:gosec // test fixture
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "server", shorthand: "s", defValue: config.DefaultServerURL},
		{name: "facing", defValue: config.FacingEnvironment},
		{name: "fps", defValue: "30"},
		{name: "dedup", defValue: "window"},
		{name: "dedup-window", defValue: "3s"},
		{name: "ttl", defValue: "3s"},
		{name: "card-order", defValue: "completion"},
		{name: "card-selector", defValue: config.DefaultCardSelector},
		{name: "manual", shorthand: "m", defValue: "false"},
		{name: "exit-when-done", defValue: "false"},
	}
	for _, tt := range tests {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestBuildScanConfig(t *testing.T) {
	t.Parallel()

	t.Run("uses defaults without flags", func(t *testing.T) {
		t.Parallel()
		cfg, exit, err := buildScanConfig(subcommand(t, "scan", "-c", emptyConfig(t)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exit {
			t.Error("expected exit-when-done to be false")
		}
		if cfg.ServerURL != config.DefaultServerURL {
			t.Errorf("ServerURL = %q", cfg.ServerURL)
		}
		if cfg.DedupPolicy != config.DefaultDedupPolicy {
			t.Errorf("DedupPolicy = %q", cfg.DedupPolicy)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("flags override the configuration file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "munscan.yaml")
		content := "scanner:\n  server_url: https://file.example.org\n  dedup: window\n  frame_rate: 10\n  headers:\n    X-Event: mun\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, exit, err := buildScanConfig(subcommand(t, "scan",
			"-c", path,
			"-s", "https://flag.example.org",
			"--dedup", "session",
			"--header", "Authorization=Bearer t",
			"--fps", "60",
			"--ttl", "5s",
			"-m",
			"--exit-when-done",
		))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exit {
			t.Error("expected exit-when-done to be true")
		}
		if cfg.ServerURL != "https://flag.example.org" {
			t.Errorf("ServerURL = %q", cfg.ServerURL)
		}
		if cfg.DedupPolicy != "session" {
			t.Errorf("DedupPolicy = %q", cfg.DedupPolicy)
		}
		if cfg.FrameRate != 60 {
			t.Errorf("FrameRate = %d", cfg.FrameRate)
		}
		if cfg.NotificationTTL != 5*time.Second {
			t.Errorf("NotificationTTL = %v", cfg.NotificationTTL)
		}
		if !cfg.ManualEntry {
			t.Error("expected manual entry")
		}
		if cfg.Headers["X-Event"] != "mun" || cfg.Headers["Authorization"] != "Bearer t" {
			t.Errorf("Headers = %v", cfg.Headers)
		}
	})

	t.Run("keeps file values for flags left alone", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "munscan.yaml")
		if err := os.WriteFile(path, []byte("scanner:\n  station: desk-4\n  facing: user\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, _, err := buildScanConfig(subcommand(t, "scan", "-c", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StationName != "desk-4" || cfg.Facing != config.FacingUser {
			t.Errorf("StationName = %q, Facing = %q", cfg.StationName, cfg.Facing)
		}
	})
}

func TestRunScanCmd(t *testing.T) {
	t.Parallel()

	t.Run("rejects an invalid configuration", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"scan", "-c", emptyConfig(t), "--dedup", "forever"})
		err := root.Execute()
		if !errors.Is(err, config.ErrInvalidDedupPolicy) {
			t.Errorf("expected ErrInvalidDedupPolicy, got %v", err)
		}
	})

	t.Run("replays frames and looks each badge up once", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			paths    []string
			stations []string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			paths = append(paths, r.URL.Path)
			stations = append(stations, r.Header.Get("X-Munscan-Station"))
			mu.Unlock()
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<div id="delegate-card" data-delegate-id="D1" data-message="Checked in Ada Lovelace"><h2>Ada Lovelace</h2></div>`))
		}))
		defer srv.Close()

		frames := t.TempDir()
		writeBadge(t, filepath.Join(frames, "001.png"), srv.URL+"/scan/D1")
		writeBadge(t, filepath.Join(frames, "002.png"), srv.URL+"/scan/D1")

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetArgs([]string{"scan",
			"-c", emptyConfig(t),
			"-s", srv.URL,
			"--station", "desk-1",
			"--frames-dir", frames,
			"--fps", "120",
			"--exit-when-done",
		})
		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(paths) != 1 || paths[0] != "/scan/D1" {
			t.Fatalf("expected one lookup of /scan/D1, got %v", paths)
		}
		if stations[0] != "desk-1" {
			t.Errorf("expected station header desk-1, got %q", stations[0])
		}
		if !strings.Contains(out.String(), "Checked in Ada Lovelace") {
			t.Errorf("expected the notification to be rendered, got %q", out.String())
		}
	})
}
