package csvio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProperties = errors.New("csvio: invalid format properties")
	ErrNotFound          = errors.New("csvio: input not found")
	ErrEmptyInput        = errors.New("csvio: input is empty")
	ErrColumnMismatch    = errors.New("csvio: invalid number of columns")
	ErrEmptyField        = errors.New("csvio: empty field")
	ErrParseValue        = errors.New("csvio: invalid numeric value")
	ErrTooManyRows       = errors.New("csvio: more rows than expected")
)

// FormatError describes malformed input. Kind is one of the package's
// sentinel errors; Err optionally carries the underlying cause.
type FormatError struct {
	Kind   error
	Path   string
	LineNo int
	Line   string
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Detail)
		sb.WriteString(")")
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " in %s", e.Path)
	}
	if e.LineNo > 0 {
		fmt.Fprintf(&sb, " at line %d: %q", e.LineNo, e.Line)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
