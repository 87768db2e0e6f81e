package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/munscan/internal/capture"
	"github.com/nao1215/munscan/internal/config"
	"github.com/nao1215/munscan/internal/dedup"
	"github.com/nao1215/munscan/internal/lookup"
	"github.com/nao1215/munscan/internal/notify"
	"github.com/nao1215/munscan/internal/resolver"
	"github.com/nao1215/munscan/internal/station"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a badge scanner station",
		Long: `Scan runs a check-in station. It reads QR codes from a camera, extracts
the delegate ID and looks the delegate up on the lookup server. The delegate
card and a short notification are shown for every lookup.

Examples:
  # Scan with the rear camera against a local server
  munscan scan

  # Use a remote server and name this station
  munscan scan -s https://checkin.example.org --station front-desk

  # Look every delegate up once and warn on repeats
  munscan scan --dedup session

  # Also accept typed IDs when a badge does not scan
  munscan scan -m

  # Replay captured frames instead of using a camera
  munscan scan --frames-dir ./frames --exit-when-done`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// Lookup server flags
	cmd.Flags().StringP("server", "s", config.DefaultServerURL,
		"Lookup server base URL")
	cmd.Flags().String("station", "",
		"Station name recorded as \"scanned by\" on the server")
	cmd.Flags().String("cookie", "",
		"Cookie sent with every lookup (e.g. \"session=abc123\")")
	cmd.Flags().StringToString("header", nil,
		"Extra HTTP header sent with every lookup (repeatable, Name=Value)")
	cmd.Flags().String("proxy", "",
		"HTTP proxy URL for lookups")

	// Frame source flags
	cmd.Flags().String("facing", config.DefaultFacing,
		"Camera preference: environment or user")
	cmd.Flags().String("device", "",
		"Video device path (overrides --facing)")
	cmd.Flags().String("frames-dir", "",
		"Replay PNG/JPEG frames from a directory instead of a camera")
	cmd.Flags().Int("fps", config.DefaultFrameRate,
		"Frame samples per second")
	cmd.Flags().Bool("exit-when-done", false,
		"Stop once every frame of --frames-dir was replayed")

	// Lookup behavior flags
	cmd.Flags().String("dedup", config.DefaultDedupPolicy,
		"Repeat scan policy: window or session")
	cmd.Flags().Duration("dedup-window", config.DefaultDedupWindow,
		"Cool-down of the window policy")
	cmd.Flags().Duration("ttl", config.DefaultNotificationTTL,
		"How long a notification stays visible")
	cmd.Flags().String("card-order", config.DefaultCardOrder,
		"Card shown when lookups overlap: completion or dispatch")
	cmd.Flags().String("card-selector", config.DefaultCardSelector,
		"CSS selector of the delegate card in the lookup response")
	cmd.Flags().String("already-scanned-selector", config.DefaultAlreadyScannedSelector,
		"CSS selector of the already scanned marker")
	cmd.Flags().BoolP("manual", "m", false,
		"Read delegate IDs typed on stdin as well")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, exitWhenDone, err := buildScanConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg, false)

	st, board, err := newStation(cfg, exitWhenDone, cmd, logger)
	if err != nil {
		return err
	}
	defer board.Close()

	ctx, cancel := signalContext(logger)
	defer cancel()

	logger.Info("station starting",
		"server", cfg.ServerURL,
		"station", cfg.StationName,
		"dedup", cfg.DedupPolicy,
		"manualEntry", cfg.ManualEntry,
	)
	return st.Run(ctx)
}

// buildScanConfig layers the scan flags that were set explicitly on top of
// the defaults and the configuration file.
func buildScanConfig(cmd *cobra.Command) (*config.Config, bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, false, err
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"server":                   &cfg.ServerURL,
		"station":                  &cfg.StationName,
		"cookie":                   &cfg.Cookie,
		"proxy":                    &cfg.ProxyURL,
		"facing":                   &cfg.Facing,
		"device":                   &cfg.Device,
		"frames-dir":               &cfg.FramesDir,
		"dedup":                    &cfg.DedupPolicy,
		"card-order":               &cfg.CardOrder,
		"card-selector":            &cfg.CardSelector,
		"already-scanned-selector": &cfg.AlreadyScannedSelector,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, false, err
		}
	}

	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return nil, false, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("fps") {
		if cfg.FrameRate, err = flags.GetInt("fps"); err != nil {
			return nil, false, err
		}
	}
	if flags.Changed("dedup-window") {
		if cfg.DedupWindow, err = flags.GetDuration("dedup-window"); err != nil {
			return nil, false, err
		}
	}
	if flags.Changed("ttl") {
		if cfg.NotificationTTL, err = flags.GetDuration("ttl"); err != nil {
			return nil, false, err
		}
	}
	if flags.Changed("manual") {
		if cfg.ManualEntry, err = flags.GetBool("manual"); err != nil {
			return nil, false, err
		}
	}

	exitWhenDone, err := flags.GetBool("exit-when-done")
	if err != nil {
		return nil, false, err
	}
	return cfg, exitWhenDone, nil
}

// newStation wires a validated configuration into a runnable station. The
// returned board must be closed by the caller.
func newStation(cfg *config.Config, exitWhenDone bool, cmd *cobra.Command, logger *slog.Logger) (*station.Station, *notify.Board, error) {
	policy, err := dedup.New(cfg.DedupPolicy, cfg.DedupWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	if wp, ok := policy.(*dedup.WindowPolicy); ok {
		logger.Debug("repeat scans suppressed", "window", wp.Window())
	}
	order, err := resolver.ParseOrder(cfg.CardOrder)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	client, err := lookup.NewClient(lookup.Options{
		BaseURL:     cfg.ServerURL,
		Cookie:      cfg.Cookie,
		Headers:     cfg.Headers,
		ProxyURL:    cfg.ProxyURL,
		UserAgent:   cfg.UserAgent,
		StationName: cfg.StationName,
		MaxBodySize: cfg.MaxBodySize,
		Selectors: lookup.Selectors{
			Card:           cfg.CardSelector,
			AlreadyScanned: cfg.AlreadyScannedSelector,
		},
	}, lookup.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create lookup client: %w", err)
	}

	board := notify.NewBoard(cfg.NotificationTTL, notify.WithLogger(logger))
	session := resolver.NewSession(policy)
	res := resolver.New(client, board, session,
		resolver.WithLogger(logger),
		resolver.WithOrder(order),
	)

	renderer := notify.NewTerminalRenderer(cmd.OutOrStdout())
	renderer.Attach(board, session.Status, session.Cards)

	var open capture.Opener
	if cfg.FramesDir != "" {
		open = capture.DirOpener(cfg.FramesDir)
	} else {
		open = capture.CameraOpener(capture.CameraOptions{
			Device: cfg.Device,
			Facing: cfg.Facing,
		})
	}

	opts := []station.Option{
		station.WithLogger(logger),
		station.WithRenderer(renderer),
		station.WithNotifier(board),
		station.WithLoopOptions(
			capture.WithInterval(cfg.FrameInterval()),
			capture.WithStopWhenExhausted(exitWhenDone),
		),
	}
	if cfg.ManualEntry {
		opts = append(opts, station.WithManualEntry(os.Stdin))
	}

	return station.New(open, capture.NewQRDecoder(true), res, opts...), board, nil
}
