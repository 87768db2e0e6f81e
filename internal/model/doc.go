// Package model defines the data structures shared across munscan.
//
// This package contains the following main types:
//   - DelegateID: The identifier extracted from a scanned QR payload
//   - Delegate: A roster entry with committee, portfolio and form status
//   - AttendanceRecord: One check-in recorded by the lookup server
//   - Notification: A transient status message shown to the operator
//
// The scanner side (capture, resolver, notify) and the server side
// (roster, database, server, report) both depend on these types, so they
// live in their own package to keep imports acyclic.
package model
