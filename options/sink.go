package options

import (
	"fmt"
	"io"
	"strings"
)

// WriterSink is a minimal Sink that writes indented text to w, the
// reference implementation `cmd/pacemakerctl metadata` uses when asked
// for the text format. Indentation deepens with each BeginList and
// un-indents on EndList, approximating pcmk__output_t's "fancy" text
// mode list nesting.
type WriterSink struct {
	w     io.Writer
	depth int
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) indent() string { return strings.Repeat("  ", s.depth) }

func (s *WriterSink) Info(format string, args ...interface{}) {
	fmt.Fprintf(s.w, "%s%s\n", s.indent(), fmt.Sprintf(format, args...))
}

func (s *WriterSink) Spacer() {
	fmt.Fprintln(s.w)
}

func (s *WriterSink) BeginList(title string) {
	if title != "" {
		fmt.Fprintf(s.w, "%s%s:\n", s.indent(), title)
	}
	s.depth++
}

func (s *WriterSink) ListItem(name, format string, args ...interface{}) {
	value := fmt.Sprintf(format, args...)
	if name == "" {
		fmt.Fprintf(s.w, "%s%s\n", s.indent(), value)
		return
	}
	fmt.Fprintf(s.w, "%s* %s: %s\n", s.indent(), name, value)
}

func (s *WriterSink) EndList() {
	if s.depth > 0 {
		s.depth--
	}
}

var _ Sink = (*WriterSink)(nil)
