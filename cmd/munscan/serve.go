package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/nao1215/munscan/internal/config"
	"github.com/nao1215/munscan/internal/database"
	"github.com/nao1215/munscan/internal/roster"
	"github.com/nao1215/munscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the delegate lookup server",
		Long: `Serve runs the lookup server used by scanner stations.

It loads the delegate roster, records attendance in a SQLite database and
serves the delegate page at /scan/{id}, check-in at /validate/{id}, manual
lookups, a dashboard and a JSON attendance summary.

Examples:
  # Serve delegates.json on :8080
  munscan serve

  # Use another roster and address
  munscan serve -r roster.yaml -l 127.0.0.1:9000

  # Only record attendance from the "Mark present" button
  munscan serve --no-auto-checkin`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().StringP("roster", "r", config.DefaultRosterPath,
		"Delegate roster file (JSON or YAML)")
	cmd.Flags().String("db-dir", "",
		"Attendance database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-auto-checkin", false,
		"Do not record attendance when a delegate page is looked up")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")

	return cmd
}

// buildServeConfig layers the serve flags that were set explicitly on top of
// the defaults and the configuration file. --roster and --db-dir are shared
// with the report command.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"listen": &cfg.ListenAddress,
		"roster": &cfg.RosterPath,
		"db-dir": &cfg.DBDir,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("no-auto-checkin") {
		off, err := flags.GetBool("no-auto-checkin")
		if err != nil {
			return nil, err
		}
		cfg.AutoCheckIn = !off
	}
	return cfg, nil
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := setupLogger(cfg, jsonLogs)

	delegates, err := roster.Load(cfg.RosterPath)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	srv, err := server.New(delegates, db,
		server.WithLogger(logger),
		server.WithAutoCheckIn(cfg.AutoCheckIn),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	out := cmd.OutOrStdout()
	return srv.ListenAndServe(ctx, cfg.ListenAddress, func(addr net.Addr) {
		fmt.Fprintf(out, "Serving %d delegates on http://%s\n", delegates.Len(), addr)
		fmt.Fprintf(out, "Attendance database: %s\n", db.Path())
		logger.Info("lookup server started",
			"addr", addr.String(),
			"roster", cfg.RosterPath,
			"db", db.Path(),
			"autoCheckIn", cfg.AutoCheckIn,
		)
	})
}
