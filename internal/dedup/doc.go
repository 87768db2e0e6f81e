// Package dedup decides whether a scanned delegate identifier should be
// looked up or dropped before any network call is made.
//
// Two policies are provided and a station uses exactly one of them:
//
//   - WindowPolicy ignores a repeat of the immediately previous identifier
//     for a short cool-down window. The same delegate can be scanned again
//     once the window elapses. Suppressed repeats are silent.
//   - SessionPolicy remembers every identifier for the lifetime of the
//     station. A repeat is never looked up again and is reported to the
//     operator as "already scanned".
//
// Both policies are safe for concurrent use because the capture loop and
// the manual entry reader submit identifiers from different goroutines.
package dedup
