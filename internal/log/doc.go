// Package log builds the slog loggers used by munscan.
//
// Every logger returned by this package wraps its handler in a
// RedactingHandler, which masks attribute values that may carry
// credentials: the lookup cookie, authorization and session headers, and
// values that look like bearer tokens or JWTs. Masking also applies in
// verbose mode, since station logs are often copied into chat when a desk
// reports a problem.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("lookup request",
//	    "url", "http://localhost:8080/scan/D42",
//	    "cookie", "session=abc123", // logged as ***REDACTED***
//	)
//	slog.SetDefault(logger)
package log
