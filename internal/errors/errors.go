package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors used as marks. Every error produced by this package wraps
// exactly one of these so callers can classify with errors.Is without
// depending on message text.
var (
	ErrValidation          = errors.New("validation_error")
	ErrNotFound            = errors.New("not_found")
	ErrAlreadyExists       = errors.New("already_exists")
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrPermissionDenied    = errors.New("permission_denied")
	ErrDatabase            = errors.New("database_error")
	ErrHTTPClient          = errors.New("http_client_error")
	ErrInvalidOperation    = errors.New("invalid_operation")
	ErrInternal            = errors.New("internal_error")
	ErrSystem              = errors.New("system_error")
)

// InternalError is the concrete error type carried through the call stack.
// It keeps the original cause, a user-facing hint and structured details that
// are safe to report back to the caller.
type InternalError struct {
	cause             error
	mark              error
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	if e.mark != nil {
		return e.mark.Error()
	}
	return "unknown error"
}

func (e *InternalError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	if e.mark != nil {
		errs = append(errs, e.mark)
	}
	return errs
}

// Hint returns the user-facing hint, if any.
func (e *InternalError) Hint() string { return e.hint }

// ReportableDetails returns details safe to surface to API callers.
func (e *InternalError) ReportableDetails() map[string]interface{} { return e.reportableDetails }

// Builder assembles an InternalError fluently:
//
//	ierr.NewError("wallet not found").
//		WithHint("No wallet exists for this customer").
//		Mark(ierr.ErrNotFound)
type Builder struct {
	err *InternalError
}

// NewError starts a builder from a plain message.
func NewError(msg string) *Builder {
	return &Builder{err: &InternalError{cause: errors.New(msg)}}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...interface{}) *Builder {
	return &Builder{err: &InternalError{cause: fmt.Errorf(format, args...)}}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *Builder {
	return &Builder{err: &InternalError{cause: err}}
}

// WithHint attaches a human-readable hint surfaced in API responses.
func (b *Builder) WithHint(hint string) *Builder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted hint.
func (b *Builder) WithHintf(format string, args ...interface{}) *Builder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to callers.
func (b *Builder) WithReportableDetails(details map[string]interface{}) *Builder {
	b.err.reportableDetails = details
	return b
}

// Mark finalizes the builder with a sentinel classification and returns the error.
func (b *Builder) Mark(mark error) error {
	b.err.mark = mark
	return b.err
}

// Error finalizes the builder without a mark (treated as ErrInternal downstream).
func (b *Builder) Error() error {
	if b.err.mark == nil {
		b.err.mark = ErrInternal
	}
	return b.err
}

func IsValidation(err error) bool          { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool       { return errors.Is(err, ErrAlreadyExists) }
func IsInsufficientCredits(err error) bool { return errors.Is(err, ErrInsufficientCredits) }
func IsPermissionDenied(err error) bool    { return errors.Is(err, ErrPermissionDenied) }
func IsDatabase(err error) bool            { return errors.Is(err, ErrDatabase) }
func IsInvalidOperation(err error) bool    { return errors.Is(err, ErrInvalidOperation) }

// Hint extracts the hint from an error produced by this package, or "".
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint()
	}
	return ""
}
