package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/munscan/internal/model"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("rejects a URL without host", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(Options{BaseURL: "/scan"})
		if !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("expected ErrInvalidBaseURL, got %v", err)
		}
	})

	t.Run("rejects a non-http scheme", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(Options{BaseURL: "ftp://host"})
		if !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("expected ErrInvalidBaseURL, got %v", err)
		}
	})

	t.Run("rejects an invalid proxy URL", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(Options{BaseURL: "http://localhost", ProxyURL: "http://[::1"})
		if err == nil {
			t.Error("expected error for invalid proxy URL")
		}
	})
}

func TestClientURLFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		base     string
		id       string
		expected string
	}{
		{"http://localhost:8080", "D42", "http://localhost:8080/scan/D42"},
		{"http://localhost:8080/", "D42", "http://localhost:8080/scan/D42"},
		{"https://host/mun", "D42", "https://host/mun/scan/D42"},
		{"http://localhost", "D 42", "http://localhost/scan/D%2042"},
		{"http://localhost", "a/b", "http://localhost/scan/a%2Fb"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(Options{BaseURL: tc.base})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.URLFor(modelID(tc.id)); got != tc.expected {
				t.Errorf("URLFor(%q) = %q, expected %q", tc.id, got, tc.expected)
			}
		})
	}
}

func TestClientLookup(t *testing.T) {
	t.Parallel()

	t.Run("sends reserved characters escaped once", func(t *testing.T) {
		t.Parallel()

		var gotEscaped, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEscaped, gotPath = r.URL.EscapedPath(), r.URL.Path
			fmt.Fprint(w, `<div id="delegate-card">D 42</div>`)
		}))
		defer server.Close()

		c, err := NewClient(Options{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := c.Lookup(context.Background(), "D 42"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotEscaped != "/scan/D%2042" {
			t.Errorf("escaped path = %q, expected /scan/D%%2042", gotEscaped)
		}
		if gotPath != "/scan/D 42" {
			t.Errorf("path = %q, expected /scan/D 42", gotPath)
		}
	})

	t.Run("requests scan path and parses the card", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			fmt.Fprint(w, `<div id="delegate-card">Ada Lovelace</div>`)
		}))
		defer server.Close()

		c, err := NewClient(Options{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res, err := c.Lookup(context.Background(), "D42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/scan/D42" {
			t.Errorf("expected request to /scan/D42, got %q", gotPath)
		}
		if !res.Success || !strings.Contains(res.CardHTML, "Ada Lovelace") {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("injects cookie station and custom headers", func(t *testing.T) {
		t.Parallel()

		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			fmt.Fprint(w, `<div id="delegate-card"></div>`)
		}))
		defer server.Close()

		c, err := NewClient(Options{
			BaseURL:     server.URL,
			Cookie:      "session=abc123",
			Headers:     map[string]string{"X-Event": "MUN2025"},
			StationName: "desk-1",
			UserAgent:   "munscan-test",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := c.Lookup(context.Background(), "D1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got.Get("Cookie") != "session=abc123" {
			t.Errorf("unexpected Cookie %q", got.Get("Cookie"))
		}
		if got.Get("X-Event") != "MUN2025" {
			t.Errorf("unexpected X-Event %q", got.Get("X-Event"))
		}
		if got.Get(StationHeader) != "desk-1" {
			t.Errorf("unexpected station header %q", got.Get(StationHeader))
		}
		if got.Get("User-Agent") != "munscan-test" {
			t.Errorf("unexpected User-Agent %q", got.Get("User-Agent"))
		}
	})

	t.Run("non-2xx status returns HTTPStatusError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Delegate D404 not found", http.StatusNotFound)
		}))
		defer server.Close()

		c, err := NewClient(Options{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = c.Lookup(context.Background(), "D404")

		var statusErr *HTTPStatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected *HTTPStatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", statusErr.StatusCode)
		}
		if !strings.HasSuffix(statusErr.URL, "/scan/D404") {
			t.Errorf("unexpected URL %q", statusErr.URL)
		}
	})

	t.Run("unreachable server returns ErrTransport", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c, err := NewClient(Options{BaseURL: url})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = c.Lookup(context.Background(), "D1")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<div id="delegate-card">Ada</div>`+strings.Repeat("x", 1024))
		}))
		defer server.Close()

		c, err := NewClient(Options{BaseURL: server.URL, MaxBodySize: 64})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res, err := c.Lookup(context.Background(), "D1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Success {
			t.Errorf("expected the card inside the limit to be found, got %+v", res)
		}
	})
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	t.Parallel()

	err := &HTTPStatusError{URL: "http://localhost/scan/D1", StatusCode: 500}
	if err.Error() != "HTTP 500 from http://localhost/scan/D1" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func modelID(s string) model.DelegateID { return model.DelegateID(s) }
