package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/munscan/internal/config"
	mlog "github.com/nao1215/munscan/internal/log"
)

// NewRootCmd creates the root command for munscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "munscan",
		Short: "QR code check-in station for conference delegates",
		Long: `munscan checks delegates in at a conference by scanning the QR code on
their badge.

"munscan serve" runs the lookup server that holds the delegate roster and the
attendance log. "munscan scan" runs a scanner station that reads badges from
a camera and looks each delegate up on the server.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .munscan in current directory, XDG config or home)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig builds the configuration from defaults and the configuration
// file. Command flags are applied by the caller afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		if path, err = cmd.Root().PersistentFlags().GetString("config"); err != nil {
			path = ""
		}
	}
	cfg.ConfigFilePath = path

	if _, err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the structured logger and installs it as default.
func setupLogger(cfg *config.Config, jsonOutput bool) *slog.Logger {
	var logger *slog.Logger
	if jsonOutput {
		logger = mlog.NewJSONLogger(os.Stderr, cfg.Verbose)
	} else {
		logger = mlog.NewLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
