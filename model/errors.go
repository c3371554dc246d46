package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptyKey is the reason recorded for entries without a key.
	ErrEmptyKey = errors.New("empty key")
)

// UnsupportedFormatError is returned when no codec is registered for a
// format id. It is raised before any parsing is attempted.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

// Is makes errors.Is(err, ErrUnsupportedFormat) succeed.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ParseError is a document-level structural failure: the input is not valid
// syntax for the declared format. Line, Column and Offset are zero when the
// underlying parser does not report them.
type ParseError struct {
	Format FormatID
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parsing %s: line %d, column %d: %v", e.Format, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parsing %s: line %d: %v", e.Format, e.Line, e.Err)
	case e.Offset > 0:
		return fmt.Sprintf("parsing %s: offset %d: %v", e.Format, e.Offset, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err for format. Position fields are left for the
// caller to fill in.
func NewParseError(format FormatID, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}

// ParseErrorAt wraps err for format at a 1-based line.
func ParseErrorAt(format FormatID, line int, err error) *ParseError {
	return &ParseError{Format: format, Line: line, Err: err}
}

// PositionAt converts a byte offset into a 1-based line and column.
func PositionAt(data []byte, offset int64) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, column = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
