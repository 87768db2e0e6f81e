package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/nao1215/munscan/internal/model"
)

// DefaultInterval is the frame sampling interval, about one display refresh.
const DefaultInterval = time.Second / 30

// Handler receives the text of every decoded QR code.
type Handler func(ctx context.Context, text string)

// Notifier is where the loop reports a missing camera.
type Notifier interface {
	Emit(message string, severity model.Severity) model.Notification
}

// Status is the station status line.
type Status interface {
	Set(text string)
}

// Ticker yields sampling ticks. It mirrors the subset of *time.Ticker the
// loop needs so tests can drive it.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithInterval sets the sampling interval.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithNotifier sets where camera failures are reported.
func WithNotifier(n Notifier) Option {
	return func(l *Loop) {
		l.notifier = n
	}
}

// WithStatus sets the status line updated on camera failures.
func WithStatus(s Status) Option {
	return func(l *Loop) {
		l.status = s
	}
}

// WithTicker replaces the ticker factory.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(l *Loop) {
		if newTicker != nil {
			l.newTicker = newTicker
		}
	}
}

// WithStopWhenExhausted makes Run return once a finite source such as a
// frames directory has no frames left.
func WithStopWhenExhausted(stop bool) Option {
	return func(l *Loop) {
		l.stopWhenExhausted = stop
	}
}

// Loop samples frames from a Source, decodes them and hands every decoded
// payload to a Handler. It does no deduplication itself.
type Loop struct {
	open              Opener
	decoder           Decoder
	handle            Handler
	interval          time.Duration
	notifier          Notifier
	status            Status
	logger            *slog.Logger
	newTicker         func(time.Duration) Ticker
	stopWhenExhausted bool
}

// NewLoop creates a capture loop.
func NewLoop(open Opener, decoder Decoder, handle Handler, opts ...Option) *Loop {
	l := &Loop{
		open:     open,
		decoder:  decoder,
		handle:   handle,
		interval: DefaultInterval,
		logger:   slog.Default(),
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{t: time.NewTicker(d)}
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run opens the source and samples it until ctx is cancelled. A source that
// cannot be opened is reported on the status line and as an error
// notification, and Run returns an error wrapping ErrCameraUnavailable.
// Once the source is open Run only returns on cancellation, or on
// exhaustion when WithStopWhenExhausted is set.
func (l *Loop) Run(ctx context.Context) error {
	src, err := l.open(ctx)
	if err != nil {
		msg := "Camera unavailable: " + err.Error()
		if l.status != nil {
			l.status.Set(msg)
		}
		if l.notifier != nil {
			l.notifier.Emit(msg, model.SeverityError)
		}
		l.logger.Error("failed to open frame source", "error", err)
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	if ds, ok := src.(*DirSource); ok {
		l.logger.Info("replaying frames", "frames", ds.Len())
	}
	defer func() {
		if err := src.Close(); err != nil {
			l.logger.Debug("failed to close frame source", "error", err)
		}
	}()

	ticker := l.newTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		if text, ok := l.sample(src); ok {
			l.dispatch(ctx, text)
		}

		if l.stopWhenExhausted {
			if ex, ok := src.(Exhauster); ok && ex.Exhausted() {
				l.logger.Debug("frame source exhausted")
				return nil
			}
		}
	}
}

// sample reads and decodes one frame. Frame errors and decoder panics skip
// the frame.
func (l *Loop) sample(src Source) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Debug("decoder panicked", "panic", r)
			text, ok = "", false
		}
	}()

	if !src.Ready() {
		return "", false
	}
	img, err := src.Frame()
	if err != nil {
		if !errors.Is(err, ErrNoFrame) {
			l.logger.Debug("failed to read frame", "error", err)
		}
		return "", false
	}
	return l.decode(img)
}

// dispatch hands text to the handler. A handler panic ends only this cycle.
func (l *Loop) dispatch(ctx context.Context, text string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("scan handler panicked", "panic", r)
		}
	}()
	l.handle(ctx, text)
}

func (l *Loop) decode(img image.Image) (string, bool) {
	res, ok := l.decoder.Decode(img)
	if !ok || res.Text == "" {
		return "", false
	}
	return res.Text, true
}
