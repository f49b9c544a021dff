package matrix

import (
	"errors"
	"fmt"
)

// Kind tags the failure classes a caller has to tell apart.
type Kind int

const (
	KindOther Kind = iota
	KindParse
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindIO:
		return "io"
	default:
		return "other"
	}
}

// ParseError reports malformed or non-numeric CSV content.
// Line and Column are 1-based; zero means the position is unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
		if e.Column > 0 {
			where = fmt.Sprintf("%s:%d", where, e.Column)
		}
	}
	return fmt.Sprintf("parse %s: %v", where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a file that could not be opened, read, created or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// KindOf reports which of the two error kinds err carries.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParse
	}
	var ie *IOError
	if errors.As(err, &ie) {
		return KindIO
	}
	return KindOther
}
