// Package report renders the attendance summary of a conference.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown for sharing with the organizing committee
//   - JSONWriter: Structured JSON output for tool integration
//
// The report data is assembled by Build from the roster and the attendance
// database summary. Writers implement the Writer interface, so the report
// command can pick one by flag.
package report
