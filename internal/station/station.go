package station

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/munscan/internal/capture"
	"github.com/nao1215/munscan/internal/notify"
	"github.com/nao1215/munscan/internal/resolver"
)

// Runner is a component that runs until its context is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Option configures a Station.
type Option func(*Station)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Station) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithManualEntry reads identifiers from r, one per line, in addition to
// camera scans.
func WithManualEntry(r io.Reader) Option {
	return func(s *Station) {
		s.input = r
	}
}

// WithRenderer runs r alongside the station. It keeps running until every
// dispatched lookup has reported.
func WithRenderer(r Runner) Option {
	return func(s *Station) {
		s.renderer = r
	}
}

// WithNotifier sets where the capture loop reports camera failures.
func WithNotifier(n capture.Notifier) Option {
	return func(s *Station) {
		s.notifier = n
	}
}

// WithLoopOptions passes options to the capture loop.
func WithLoopOptions(opts ...capture.Option) Option {
	return func(s *Station) {
		s.loopOpts = append(s.loopOpts, opts...)
	}
}

// Station ties a frame source and a decoder to a resolver.
type Station struct {
	open     capture.Opener
	decoder  capture.Decoder
	resolver *resolver.Resolver
	entry    *resolver.ManualEntry
	input    io.Reader
	renderer Runner
	notifier capture.Notifier
	loopOpts []capture.Option
	logger   *slog.Logger
}

// New creates a Station.
func New(open capture.Opener, decoder capture.Decoder, res *resolver.Resolver, opts ...Option) *Station {
	s := &Station{
		open:     open,
		decoder:  decoder,
		resolver: res,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.input != nil {
		s.entry = resolver.NewManualEntry(res)
	}
	return s
}

// ManualEntry returns the manual entry field, or nil when manual entry is
// off.
func (s *Station) ManualEntry() *resolver.ManualEntry {
	return s.entry
}

// Run starts the station and blocks until ctx is cancelled. It also returns
// when a finite frame source is exhausted and the loop was told to stop.
//
// Without manual entry a camera that cannot be opened ends the run with an
// error wrapping capture.ErrCameraUnavailable. With manual entry the
// station keeps accepting typed identifiers. Lookups still in flight are
// awaited before Run returns, so their notifications are rendered.
func (s *Station) Run(ctx context.Context) error {
	status := s.resolver.Session().Status
	status.Set(resolver.StatusReady)

	renderDone := make(chan error, 1)
	renderCtx, stopRender := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRender()
	if s.renderer != nil {
		go func() { renderDone <- s.renderer.Run(renderCtx) }()
	} else {
		renderDone <- nil
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	// Lookups get the caller's context so stopping the loop does not
	// cancel them.
	handle := func(_ context.Context, text string) {
		outcome := s.resolver.Submit(ctx, text)
		s.logger.Debug("scan handled", "outcome", outcome.String())
	}

	opts := append([]capture.Option{
		capture.WithLogger(s.logger),
		capture.WithStatus(status),
	}, s.loopOpts...)
	if s.notifier != nil {
		opts = append(opts, capture.WithNotifier(s.notifier))
	}
	loop := capture.NewLoop(s.open, s.decoder, handle, opts...)

	g.Go(func() error {
		err := loop.Run(gctx)
		switch {
		case err != nil && s.entry != nil && errors.Is(err, capture.ErrCameraUnavailable):
			s.logger.Warn("camera unavailable, manual entry only", "error", err)
			<-gctx.Done()
			return nil
		case err == nil && gctx.Err() == nil:
			// The source ran dry.
			stop()
		}
		return err
	})

	if s.entry != nil {
		g.Go(func() error {
			return s.readManual(gctx, ctx)
		})
	}

	err := g.Wait()
	s.resolver.Wait()
	stopRender()
	if rerr := <-renderDone; rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// readManual submits every line read from the input. The reader goroutine
// cannot be interrupted while blocked in Read, so it is left behind on
// cancellation. End of input only stops manual entry.
func (s *Station) readManual(ctx, lookupCtx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.input)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			s.logger.Debug("manual entry read failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				s.logger.Debug("manual entry input closed")
				<-ctx.Done()
				return nil
			}
			s.entry.Set(line)
			outcome := s.entry.Submit(lookupCtx)
			s.logger.Debug("manual entry handled", "outcome", outcome.String())
		}
	}
}

var _ Runner = (*notify.TerminalRenderer)(nil)
