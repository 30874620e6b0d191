package instruction

import (
	"errors"
	"fmt"
)

// ErrInvalidInstruction marks configuration errors: the instruction text is
// rejected before any cached data is touched.
var ErrInvalidInstruction = errors.New("invalid instruction")

type invalidInstructionError struct {
	text string
	msg  string
}

func (e invalidInstructionError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidInstruction, e.text, e.msg)
}

func (e invalidInstructionError) Unwrap() error {
	return ErrInvalidInstruction
}

func newInvalidInstruction(text, format string, args ...any) error {
	return invalidInstructionError{text: text, msg: fmt.Sprintf(format, args...)}
}
