package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/munscan/internal/database"
	"github.com/nao1215/munscan/internal/lookup"
	"github.com/nao1215/munscan/internal/model"
	"github.com/nao1215/munscan/internal/roster"
)

// stationHeader names the scanning station of a request.
const stationHeader = lookup.StationHeader

// DefaultScanner is recorded as "scanned by" when a request names no
// station.
const DefaultScanner = "anonymous"

// shutdownTimeout bounds the graceful shutdown of ListenAndServe.
const shutdownTimeout = 5 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// AttendanceStore persists check-ins. *database.AttendanceDB implements it.
type AttendanceStore interface {
	MarkAttendance(ctx context.Context, id model.DelegateID, scannedBy string) (model.AttendanceRecord, bool, error)
	Get(ctx context.Context, id model.DelegateID) (model.AttendanceRecord, bool, error)
	Summary(ctx context.Context) (database.Summary, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAutoCheckIn controls whether GET /scan/{id} records attendance.
// It is on by default.
func WithAutoCheckIn(on bool) Option {
	return func(s *Server) {
		s.autoCheckIn = on
	}
}

// Server serves delegate cards and records attendance.
type Server struct {
	roster      *roster.Roster
	store       AttendanceStore
	autoCheckIn bool
	logger      *slog.Logger
}

// New creates a Server.
func New(r *roster.Roster, store AttendanceStore, opts ...Option) (*Server, error) {
	if r == nil {
		return nil, ErrNoRoster
	}
	if store == nil {
		return nil, errors.New("attendance store is required")
	}
	s := &Server{
		roster:      r,
		store:       store,
		autoCheckIn: true,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the router with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(s.logger))
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.healthz)
	r.Get("/scan/{id}", s.scan)
	r.Post("/validate/{id}", s.validate)
	r.Post("/manual_scan", s.manualScan)
	r.Get("/dashboard", s.dashboard)
	r.Get("/attendance/summary", s.attendanceSummary)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, when not nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
