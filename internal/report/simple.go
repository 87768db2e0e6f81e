package report

import (
	"fmt"
	"io"
	"strings"
)

// timeFormat is how check-in times are printed.
const timeFormat = "2006-01-02 15:04:05"

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showAbsent lists every absent delegate.
	showAbsent bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowAbsent lists absent delegates after the check-ins.
func WithShowAbsent(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showAbsent = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Attendance) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCommittees(&sb, report)
	w.writeStations(&sb, report)
	w.writeCheckins(&sb, report)
	if w.showAbsent {
		w.writeAbsentees(&sb, report)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Attendance) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         ATTENDANCE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Generated:      %s\n", report.GeneratedAt.Format(timeFormat))
	fmt.Fprintf(sb, "Delegates:      %d\n", report.TotalDelegates)
	fmt.Fprintf(sb, "Present:        %d (%.1f%%)\n", report.Present, report.AttendanceRate)
	fmt.Fprintf(sb, "Absent:         %d\n", report.Absent)
	fmt.Fprintf(sb, "Pending forms:  %d\n", report.PendingForms)
	if len(report.Unknown) > 0 {
		fmt.Fprintf(sb, "Unknown IDs:    %d\n", len(report.Unknown))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCommittees(sb *strings.Builder, report *Attendance) {
	if len(report.Committees) == 0 {
		return
	}
	writeSection(sb, "COMMITTEES")
	for _, c := range report.Committees {
		fmt.Fprintf(sb, "  %-20s %3d / %-3d\n", c.Name, c.Present, c.Total)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStations(sb *strings.Builder, report *Attendance) {
	if len(report.ScannedBy) == 0 {
		return
	}
	writeSection(sb, "STATIONS")
	for _, name := range report.Stations() {
		fmt.Fprintf(sb, "  %-20s %d\n", name, report.ScannedBy[name])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCheckins(sb *strings.Builder, report *Attendance) {
	writeSection(sb, "CHECK-INS")
	if len(report.Checkins) == 0 {
		sb.WriteString("  No delegates checked in yet\n\n")
		return
	}
	for _, c := range report.Checkins {
		fmt.Fprintf(sb, "  [+] %s  %s (%s, %s)\n", c.Timestamp.Format(timeFormat), c.Name, c.Country, c.Committee)
		fmt.Fprintf(sb, "      ID: %s  Scanned by: %s\n", c.DelegateID, c.ScannedBy)
	}
	for _, id := range report.Unknown {
		fmt.Fprintf(sb, "  [?] %s (not in roster)\n", id)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAbsentees(sb *strings.Builder, report *Attendance) {
	writeSection(sb, "ABSENT")
	if len(report.Absentees) == 0 {
		sb.WriteString("  Everyone is here\n\n")
		return
	}
	for _, a := range report.Absentees {
		marker := "-"
		if !a.FormsComplete {
			marker = "!"
		}
		fmt.Fprintf(sb, "  [%s] %s  %s (%s, %s)\n", marker, a.DelegateID, a.Name, a.Country, a.Committee)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by munscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
