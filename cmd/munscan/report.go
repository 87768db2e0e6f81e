package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/munscan/internal/config"
	"github.com/nao1215/munscan/internal/database"
	"github.com/nao1215/munscan/internal/report"
	"github.com/nao1215/munscan/internal/roster"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the attendance report",
		Long: `Report reads the attendance database written by "munscan serve" and prints
attendance per committee, per station and per delegate.

It can run while the server is up.

Examples:
  # Print a text report
  munscan report

  # Include the list of absent delegates
  munscan report --absent

  # Write a Markdown report to a file
  munscan report --markdown -o reports/day1.md

  # Output JSON
  munscan report --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("roster", "r", config.DefaultRosterPath,
		"Delegate roster file (JSON or YAML)")
	cmd.Flags().String("db-dir", "",
		"Attendance database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("absent", false,
		"List absent delegates in the text report")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	showAbsent, err := flags.GetBool("absent")
	if err != nil {
		return err
	}

	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cfg, false)

	attendance, err := buildReport(cmd.Context(), cfg, time.Now())
	if err != nil {
		return err
	}
	return outputReport(cfg, cmd.OutOrStdout(), attendance, showAbsent)
}

// buildReport joins the roster with the stored attendance.
func buildReport(ctx context.Context, cfg *config.Config, now time.Time) (*report.Attendance, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	delegates, err := roster.Load(cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	summary, err := db.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance: %w", err)
	}
	return report.Build(delegates, summary, now), nil
}

// outputReport writes the report to the configured file or to stdout.
func outputReport(cfg *config.Config, stdout io.Writer, attendance *report.Attendance, showAbsent bool) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list delegate names, so keep them owner readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithShowAbsent(showAbsent))
	}
	_, err := w.Write(attendance)
	return err
}
