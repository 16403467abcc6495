package patdl

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateMalformed reports a template missing required structure or
	// carrying content the parser does not understand.
	ErrTemplateMalformed = errors.New("patdl: template malformed")

	// ErrUnknownLine reports a selector referencing a line without a lineData
	// definition.
	ErrUnknownLine = errors.New("patdl: unknown line")

	// ErrUnknownProcedure reports a hasResult condition or procedure call with
	// no procedure registered for the template's country.
	ErrUnknownProcedure = errors.New("patdl: unknown procedure")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTemplateMalformed, fmt.Sprintf(format, args...))
}
