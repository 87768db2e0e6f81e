package lookup

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/munscan/internal/model"
)

// Default selectors used when Selectors fields are empty.
const (
	DefaultCardSelector           = "#delegate-card"
	DefaultAlreadyScannedSelector = ".already-scanned"
)

// MessageAttr is an optional attribute on the card element that overrides
// the default success message.
const MessageAttr = "data-message"

// Selectors are the CSS selectors used to read a lookup response.
type Selectors struct {
	Card           string
	AlreadyScanned string
}

func (s Selectors) withDefaults() Selectors {
	if strings.TrimSpace(s.Card) == "" {
		s.Card = DefaultCardSelector
	}
	if strings.TrimSpace(s.AlreadyScanned) == "" {
		s.AlreadyScanned = DefaultAlreadyScannedSelector
	}
	return s
}

// Result is the outcome of a successful (2xx) lookup.
type Result struct {
	// CardHTML is the outer HTML of the card element, or empty when the
	// page has no card.
	CardHTML string

	// Message is the text to notify the operator with.
	Message string

	// AlreadyScanned is true when the server marked the delegate as
	// already processed.
	AlreadyScanned bool

	// Success is true when a card was found and it carries no marker.
	Success bool
}

// HasCard reports whether the response carried a card fragment.
func (r Result) HasCard() bool {
	return r.CardHTML != ""
}

// Severity maps the result to a notification class: success, then
// warning for an already processed delegate, else error.
func (r Result) Severity() model.Severity {
	switch {
	case r.Success:
		return model.SeveritySuccess
	case r.AlreadyScanned:
		return model.SeverityWarning
	default:
		return model.SeverityError
	}
}

// ParseResponse reads a lookup response body.
//
// The card is the first element matching sel.Card. The already-scanned
// marker is searched inside the card first and then in the whole document.
// A document that cannot be parsed is treated like one without a card.
func ParseResponse(id model.DelegateID, body []byte, sel Selectors) Result {
	sel = sel.withDefaults()
	noCard := Result{Message: "No delegate card for " + string(id)}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return noCard
	}

	var res Result
	card := doc.Find(sel.Card).First()
	if card.Length() > 0 {
		if outer, err := goquery.OuterHtml(card); err == nil {
			res.CardHTML = strings.TrimSpace(outer)
		}
	}

	marker := card.Find(sel.AlreadyScanned).First()
	if marker.Length() == 0 {
		marker = doc.Find(sel.AlreadyScanned).First()
	}

	switch {
	case marker.Length() > 0:
		res.AlreadyScanned = true
		res.Message = normSpace(marker.Text())
		if res.Message == "" {
			res.Message = string(id) + " already scanned"
		}
	case res.HasCard():
		res.Success = true
		res.Message = normSpace(card.AttrOr(MessageAttr, ""))
		if res.Message == "" {
			res.Message = "Checked in " + string(id)
		}
	default:
		return noCard
	}
	return res
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
