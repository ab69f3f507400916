package protocol

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// EncodeFrame returns the wire line of a frame without the trailing newline.
// Newlines are removed from every field; tabs are replaced with spaces in the
// Initialization backdrop and attributes since tabs separate its fields.
func EncodeFrame(f Frame) string {
	var b strings.Builder
	b.WriteByte(byte(f.Tag()))

	switch f := f.(type) {
	case *Initialization:
		b.WriteString(strconv.FormatUint(f.Duration, 10))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatUint(uint64(f.Width), 10))
		b.WriteByte('\t')
		b.WriteString(strconv.FormatUint(uint64(f.Height), 10))
		b.WriteByte('\t')
		b.WriteString(field(f.Backdrop))
		b.WriteByte('\t')
		b.WriteString(field(f.Attributes))
	case *Style:
		b.WriteString(stripNewlines(f.CSS))
	case *Full:
		b.WriteString(stripNewlines(f.Content))
	case *Delta:
		b.WriteString(stripNewlines(f.Script))
	case *Unchanged:
		b.WriteString(strconv.FormatUint(uint64(f.Count), 10))
	}

	return b.String()
}

// Writer writes a VGV stream to an io.Writer.
// The magic header is written before the first frame.
type Writer struct {
	w      *bufio.Writer
	n      int64
	header bool
	err    error
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the magic header if it has not been written yet.
func (w *Writer) WriteHeader() error {
	if w.header {
		return w.err
	}
	w.header = true
	w.writeLine(Magic)
	return w.err
}

// WriteFrame writes one frame line.
func (w *Writer) WriteFrame(f Frame) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	w.writeLine(EncodeFrame(f))
	return w.err
}

// Flush flushes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Written returns the number of bytes written so far, including buffered bytes.
func (w *Writer) Written() int64 {
	return w.n
}

func (w *Writer) writeLine(s string) {
	if w.err != nil {
		return
	}
	n, err := w.w.WriteString(s)
	w.n += int64(n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return
	}
	w.n++
}

// WriteStream writes a complete stream: the magic header followed by frames.
func WriteStream(w io.Writer, frames []Frame) error {
	sw := NewWriter(w)
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for _, f := range frames {
		if err := sw.WriteFrame(f); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// stripNewlines removes line breaks, which cannot be represented in a frame.
func stripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
}

func field(s string) string {
	return strings.ReplaceAll(stripNewlines(s), "\t", " ")
}
