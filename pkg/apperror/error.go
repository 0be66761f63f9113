package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError for propagation decisions. Session kinds are
// fatal to the current navigation, collection kinds are local and retryable.
type Kind string

const (
	KindAuthPersist Kind = "auth_persist"
	KindAuthExpired Kind = "auth_expired"
	KindNoSession   Kind = "no_session"
	KindFetch       Kind = "fetch"
	KindMutation    Kind = "mutation"
	KindValidation  Kind = "validation"
	KindRequest     Kind = "request"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrFetch) works
// for wrapped values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Kind sentinels for errors.Is.
var (
	ErrAuthPersist = &AppError{Kind: KindAuthPersist}
	ErrAuthExpired = &AppError{Kind: KindAuthExpired}
	ErrNoSession   = &AppError{Kind: KindNoSession}
	ErrFetch       = &AppError{Kind: KindFetch}
	ErrMutation    = &AppError{Kind: KindMutation}
	ErrValidation  = &AppError{Kind: KindValidation}
)

func AuthPersist(err error) *AppError {
	return New(KindAuthPersist, http.StatusInternalServerError, "Could not persist credentials", err)
}

func AuthExpired(message string) *AppError {
	if message == "" {
		message = "Session expired, please log in again"
	}
	return New(KindAuthExpired, http.StatusUnauthorized, message, nil)
}

func NoSession() *AppError {
	return New(KindNoSession, http.StatusUnauthorized, "No active session", nil)
}

func Fetch(message string, err error) *AppError {
	return New(KindFetch, http.StatusBadGateway, message, err)
}

func Mutation(message string, err error) *AppError {
	return New(KindMutation, http.StatusBadGateway, message, err)
}

func Validation(message string, err error) *AppError {
	return New(KindValidation, http.StatusBadGateway, message, err)
}

// Conflict is a mutation rejected locally, e.g. a second action on a target
// that still has one in flight.
func Conflict(message string) *AppError {
	return New(KindMutation, http.StatusConflict, message, nil)
}

func BadRequest(message string) *AppError {
	return New(KindRequest, http.StatusBadRequest, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindRequest, http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindRequest, http.StatusNotFound, message, nil)
}

// KindOf returns the kind of the first AppError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsAuthExpired reports whether err means the backend rejected the session token.
func IsAuthExpired(err error) bool {
	return KindOf(err) == KindAuthExpired
}
