package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Attendance) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCommittees(md, report)
	w.writeCheckins(md, report)
	w.writeAbsentees(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Attendance) {
	md.H1("Attendance Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Delegates", strconv.Itoa(report.TotalDelegates)},
			{"Present", strconv.Itoa(report.Present)},
			{"Absent", strconv.Itoa(report.Absent)},
			{"Attendance Rate", strconv.FormatFloat(report.AttendanceRate, 'f', 1, 64) + "%"},
			{"Pending Forms", strconv.Itoa(report.PendingForms)},
		},
	})
	md.PlainText("")

	if report.TotalDelegates > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Attendance"),
			piechart.WithShowData(true),
		)
		chart.LabelAndIntValue("Present", uint64(report.Present))
		chart.LabelAndIntValue("Absent", uint64(report.Absent))
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case report.TotalDelegates == 0:
		md.Warningf("The roster is empty.")
	case report.Absent == 0:
		md.Tip("Every delegate has checked in.")
	case report.PendingForms > 0:
		md.Importantf("%d delegate(s) still have pending forms.", report.PendingForms)
	default:
		md.Note("All forms are submitted.")
	}
	md.PlainText("")

	if len(report.Unknown) > 0 {
		md.Cautionf("%d checked-in identifier(s) are not in the roster.", len(report.Unknown))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeCommittees(md *markdown.Markdown, report *Attendance) {
	md.H2("Committees")
	md.PlainText("")
	if len(report.Committees) == 0 {
		md.PlainText("No committees in the roster.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Committees))
	for i, c := range report.Committees {
		rows[i] = []string{c.Name, strconv.Itoa(c.Present), strconv.Itoa(c.Total)}
	}
	md.Table(markdown.TableSet{Header: []string{"Committee", "Present", "Total"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCheckins(md *markdown.Markdown, report *Attendance) {
	md.H2("Check-ins")
	md.PlainText("")
	if len(report.Checkins) == 0 {
		md.PlainText("No delegates checked in yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Checkins))
	for i, c := range report.Checkins {
		rows[i] = []string{
			c.Timestamp.Format(timeFormat),
			"`" + c.DelegateID.String() + "`",
			c.Name,
			c.Country,
			c.Committee,
			c.ScannedBy,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "ID", "Name", "Country", "Committee", "Scanned By"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.ScannedBy) > 0 {
		stations := make([]string, 0, len(report.ScannedBy))
		for _, name := range report.Stations() {
			stations = append(stations, name+": "+strconv.Itoa(report.ScannedBy[name]))
		}
		md.Details("Check-ins per station", strings.Join(stations, "\n"))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeAbsentees(md *markdown.Markdown, report *Attendance) {
	md.H2("Absent")
	md.PlainText("")
	if len(report.Absentees) == 0 {
		md.PlainText("Everyone is here.")
		md.PlainText("")
		return
	}

	items := make([]string, len(report.Absentees))
	for i, a := range report.Absentees {
		item := "`" + a.DelegateID.String() + "` " + a.Name + " (" + a.Country + ", " + a.Committee + ")"
		if !a.FormsComplete {
			item += " - forms pending"
		}
		items[i] = item
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [munscan](https://github.com/nao1215/munscan)*")
}
