package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/nao1215/munscan/internal/card"
	"github.com/nao1215/munscan/internal/model"
)

// rendererBuffer is the number of pending lines a renderer accepts before
// producers wait for it.
const rendererBuffer = 64

// TerminalRenderer prints notifications, status changes and card
// replacements as lines on a terminal. Producers hand lines over through a
// channel and Run writes them, so output from concurrent lookups never
// interleaves within a line.
type TerminalRenderer struct {
	w      io.Writer
	lines  chan string
	done   chan struct{}
	once   sync.Once
	styles map[model.Severity]*color.Color
	status *color.Color
	cardC  *color.Color
}

// NewTerminalRenderer creates a renderer writing to w. Colours are used
// only when w is a terminal and NO_COLOR is not set.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	r := &TerminalRenderer{
		w:     w,
		lines: make(chan string, rendererBuffer),
		done:  make(chan struct{}),
		styles: map[model.Severity]*color.Color{
			model.SeveritySuccess: color.New(color.FgGreen, color.Bold),
			model.SeverityWarning: color.New(color.FgYellow, color.Bold),
			model.SeverityError:   color.New(color.FgRed, color.Bold),
		},
		status: color.New(color.Faint),
		cardC:  color.New(color.FgCyan),
	}

	enable := isTerminal(w) && os.Getenv("NO_COLOR") == ""
	for _, c := range r.colors() {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *TerminalRenderer) colors() []*color.Color {
	out := []*color.Color{r.status, r.cardC}
	for _, c := range r.styles {
		out = append(out, c)
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Attach subscribes the renderer to a board, a status line and a card
// container. Any of them may be nil.
func (r *TerminalRenderer) Attach(board *Board, status *StatusLine, cards *card.Container) {
	if board != nil {
		board.Subscribe(func(ev Event) {
			if ev.Kind == Added {
				r.send(r.formatNotification(ev.Notification))
			}
		})
	}
	if status != nil {
		status.Observe(func(text string) {
			if text != "" {
				r.send(r.status.Sprint("» " + text))
			}
		})
	}
	if cards != nil {
		cards.Observe(func(c card.Card) {
			r.send(r.formatCard(c))
		})
	}
}

// Run writes lines until ctx is cancelled, then drains what is buffered.
func (r *TerminalRenderer) Run(ctx context.Context) error {
	defer r.once.Do(func() { close(r.done) })
	for {
		select {
		case line := <-r.lines:
			fmt.Fprintln(r.w, line)
		case <-ctx.Done():
			for {
				select {
				case line := <-r.lines:
					fmt.Fprintln(r.w, line)
				default:
					return nil
				}
			}
		}
	}
}

func (r *TerminalRenderer) send(line string) {
	select {
	case r.lines <- line:
	case <-r.done:
	}
}

func (r *TerminalRenderer) formatNotification(n model.Notification) string {
	icon := map[model.Severity]string{
		model.SeveritySuccess: "✓",
		model.SeverityWarning: "!",
		model.SeverityError:   "✗",
	}[n.Severity]
	if icon == "" {
		icon = "·"
	}
	style, ok := r.styles[n.Severity]
	if !ok {
		return fmt.Sprintf("%s [%s] %s", n.CreatedAt.Format(time.TimeOnly), icon, n.Message)
	}
	return fmt.Sprintf("%s %s %s", n.CreatedAt.Format(time.TimeOnly), style.Sprintf("[%s]", icon), n.Message)
}

func (r *TerminalRenderer) formatCard(c card.Card) string {
	var b strings.Builder
	b.WriteString(r.cardC.Sprintf("┌─ %s", c.DelegateID))
	for _, line := range strings.Split(card.Text(c.HTML), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(r.cardC.Sprint("│ "))
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(r.cardC.Sprint("└─"))
	return b.String()
}
