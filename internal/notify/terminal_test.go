package notify

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/munscan/internal/card"
	"github.com/nao1215/munscan/internal/model"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminalRenderer(t *testing.T) {
	t.Parallel()

	out := &syncBuffer{}
	r := NewTerminalRenderer(out)

	board := NewBoard(time.Minute, WithScheduler((&fakeScheduler{}).schedule))
	var status StatusLine
	cards := card.NewContainer()
	r.Attach(board, &status, cards)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	status.Set("Looking up D42…")
	cards.Replace(card.Card{DelegateID: "D42", HTML: `<div id="delegate-card"><h2>Ada Lovelace</h2><p>France</p></div>`})
	board.Emit("Checked in D42", model.SeveritySuccess)
	board.Emit("Lookup failed for D9", model.SeverityError)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "Lookup failed for D9") {
		if time.Now().After(deadline) {
			t.Fatalf("renderer did not print everything: %q", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"» Looking up D42…", "┌─ D42", "│ Ada Lovelace", "│ France", "[✓] Checked in D42", "[✗] Lookup failed for D9"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("expected no colour codes for a non-terminal writer: %q", output)
	}
}

func TestTerminalRendererAttachNil(t *testing.T) {
	t.Parallel()

	r := NewTerminalRenderer(&bytes.Buffer{})
	r.Attach(nil, nil, nil)
}
