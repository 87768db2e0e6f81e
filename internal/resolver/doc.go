// Package resolver turns decoded payloads into delegate lookups.
//
// Resolver.Submit runs the synchronous part of the workflow on the
// caller's goroutine: identifier extraction, deduplication and the status
// update. The lookup itself runs on its own goroutine, so the capture loop
// keeps sampling frames while a lookup is in flight and several lookups for
// different delegates may overlap.
//
// Every state the workflow mutates (deduplication memory, the card
// container, the dispatch counter, the status line) lives in a Session
// owned by the resolver.
//
// When lookups overlap, the card shown follows the configured Order:
// OrderCompletion keeps the card of whichever lookup completed last, and
// OrderDispatch keeps the card of the most recently dispatched lookup.
// Superseded lookups are never cancelled; their notifications are always
// emitted.
package resolver
