package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError into the categories callers branch on.
type Kind int

const (
	// KindNotFound - a referenced group, user, movie or invitation does
	// not exist.
	KindNotFound Kind = iota
	// KindForbidden - the actor lacks the specific authority for the
	// action (not the owner, not the contributor, not a member, over the
	// contribution cap).
	KindForbidden
	// KindConflict - the action is well-formed but illegal in the current
	// phase or state.
	KindConflict
	// KindInvalidRanking - a ranking batch fails structural or
	// pool-membership validation.
	KindInvalidRanking
	// KindInternal - unexpected storage or infrastructure failure.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidRanking:
		return "invalid_ranking"
	default:
		return "internal"
	}
}

// AppError is the typed error every service operation returns on a rejected
// precondition. Code is a stable machine identifier; Message names the
// offending field or entity.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match any two AppErrors of the same kind.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Kind == appErr.Kind && (appErr.Code == "" || appErr.Code == e.Code)
}

func NewNotFound(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidRanking(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidRanking, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewInternal(code, message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Code: code, Message: message, cause: cause}
}

// KindOf extracts the kind of err, defaulting to KindInternal for errors
// that are not AppErrors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == k
}
