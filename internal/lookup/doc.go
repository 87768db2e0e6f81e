// Package lookup is the client side of the delegate lookup endpoint.
//
// Client.Lookup issues GET {server}/scan/{id} and parses the HTML document
// that comes back. The document carries one delegate card element, found
// with a CSS selector (default "#delegate-card"). A nested marker element
// (default ".already-scanned") signals that the delegate was already
// processed, and its text becomes the warning shown to the operator.
//
// Lookups are never retried and carry no timeout of their own. A failed
// lookup is reported once and the next scan simply tries again.
package lookup
