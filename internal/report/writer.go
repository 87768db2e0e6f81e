package report

import "io"

// Writer renders an attendance report. Write returns the number of bytes
// written.
type Writer interface {
	Write(report *Attendance) (int, error)
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
