package core

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Check with errors.Is; the web layer maps them to
// 422, 404 and 409.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// domainError carries a user-facing message while unwrapping to its kind.
type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func validationf(format string, args ...any) error {
	return &domainError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &domainError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &domainError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// UserMessage returns the message of the innermost domain error in err's
// chain, without the wrapping context added on the way up. Other errors are
// returned as is.
func UserMessage(err error) string {
	var de *domainError
	if errors.As(err, &de) {
		return de.msg
	}
	return err.Error()
}

// ValidationError builds a validation failure with msg shown to the user, for
// packages outside core.
func ValidationError(msg string) error {
	return &domainError{kind: ErrValidation, msg: msg}
}
