// Package station runs one scanner station: the capture loop, the optional
// manual entry reader and the terminal renderer, all feeding a single
// resolver.
package station
