package response

import (
	"errors"
	"fmt"
	"io"

	"github.com/nhdewitt/route-server/internal/headers"
)

type writerState int

const (
	StateWritingStatusLine writerState = iota
	StateWritingHeaders
	StateWritingBody
	StateDone
)

var ErrWriterState = errors.New("writer state out-of-order")

type Writer struct {
	writer io.Writer
	state  writerState
	status StatusCode
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		state:  StateWritingStatusLine,
	}
}

// Status reports the status code written so far, or 0.
func (w *Writer) Status() StatusCode {
	return w.status
}

func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != StateWritingStatusLine {
		return ErrWriterState
	}

	if _, err := w.writer.Write(statusCode.StatusLine()); err != nil {
		return fmt.Errorf("error writing status line: %w", err)
	}

	w.status = statusCode
	w.state = StateWritingHeaders
	return nil
}

func (w *Writer) WriteHeaders(h headers.Headers) error {
	if w.state != StateWritingHeaders {
		return ErrWriterState
	}

	if _, err := w.writer.Write(h.Bytes()); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}

	w.state = StateWritingBody
	return nil
}

func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != StateWritingBody {
		return 0, ErrWriterState
	}

	w.state = StateDone
	return w.writer.Write(p)
}

// WriteRendered writes a response produced by Render in one go. When
// headOnly is set the body is dropped.
func (w *Writer) WriteRendered(statusCode StatusCode, rendered []byte, headOnly bool) error {
	if w.state != StateWritingStatusLine {
		return ErrWriterState
	}

	if headOnly {
		rendered = HeadOf(rendered)
	}
	if _, err := w.writer.Write(rendered); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}

	w.status = statusCode
	w.state = StateDone
	return nil
}
