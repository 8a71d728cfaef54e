package types

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the class of a template error.
type ErrorCode string

// Error codes.
const (
	// S0xxx: lexer and syntax errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrUnsupportedEscape ErrorCode = "S0102"
	ErrInvalidCharacter  ErrorCode = "S0103"
	ErrInvalidNumber     ErrorCode = "S0104"
	ErrSyntaxError       ErrorCode = "S0201"
	ErrExpectedToken     ErrorCode = "S0202"
	ErrTooDeep           ErrorCode = "S0203"

	// C0xxx: compile errors
	ErrNoSuchFunction     ErrorCode = "C0101"
	ErrArity              ErrorCode = "C0102"
	ErrNoSuchModule       ErrorCode = "C0103"
	ErrAlreadyImported    ErrorCode = "C0104"
	ErrResource           ErrorCode = "C0105"
	ErrModuleHasNoBody    ErrorCode = "C0106"
	ErrDuplicateKey       ErrorCode = "C0201"
	ErrMatcherDynamicKeys ErrorCode = "C0202"
	ErrMatcherContext     ErrorCode = "C0203"
	ErrDuplicateVariable  ErrorCode = "C0301"
	ErrRegexSyntax        ErrorCode = "C0401"

	// R0xxx: runtime errors
	ErrTypeMismatch       ErrorCode = "R0101"
	ErrCannotCompare      ErrorCode = "R0102"
	ErrDivisionByZero     ErrorCode = "R0103"
	ErrIndexOutOfRange    ErrorCode = "R0104"
	ErrBadIndex           ErrorCode = "R0105"
	ErrNotIterable        ErrorCode = "R0106"
	ErrNonStringKey       ErrorCode = "R0107"
	ErrDuplicateDynamic   ErrorCode = "R0108"
	ErrNoSuchVariable     ErrorCode = "R0109"
	ErrCallDepth          ErrorCode = "R0110"
	ErrExtensionFailure   ErrorCode = "R0201"
	ErrUserError          ErrorCode = "R0202"
	ErrFunctionArgument   ErrorCode = "R0203"
)

// Location is a position in template source.
type Location struct {
	Source string
	Line   int
	Column int
}

// String renders the location as source:line:column.
func (l Location) String() string {
	src := l.Source
	if src == "" {
		src = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", src, l.Line, l.Column)
}

// Error is the single error type raised by compilation and evaluation.
type Error struct {
	Code     ErrorCode
	Message  string
	Location *Location
	Err      error
}

// NewError creates a new error without location.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates an error with a formatted message. loc may be nil.
func Errorf(code ErrorCode, loc *Location, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s at %s", e.Code, e.Message, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithLocation sets the location unless one is already present.
func (e *Error) WithLocation(loc *Location) *Error {
	if e.Location == nil {
		e.Location = loc
	}
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether err is, or wraps, an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// AsError returns err as an *Error, wrapping foreign errors under code.
func AsError(err error, code ErrorCode, loc *Location) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te.WithLocation(loc)
	}
	return &Error{Code: code, Message: err.Error(), Location: loc, Err: err}
}
