package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// handler layer without enumerating concrete types there.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrAuthority        = errors.New("authority call failed")
)

// NotFoundError indicates an entity is absent or soft-removed.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ForbiddenError indicates a role/resource authorization failure.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) StatusCode() int { return http.StatusForbidden }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// OperationForbiddenError indicates the caller can see the target but may
// not fully own it for a destructive operation. Kept distinct from
// ForbiddenError so handlers and audit logs can tell the two apart.
type OperationForbiddenError struct {
	UserID    int64
	Operation string
	Reason    string
}

func (e *OperationForbiddenError) Error() string {
	return fmt.Sprintf("user %d cannot perform %s: %s", e.UserID, e.Operation, e.Reason)
}

func (e *OperationForbiddenError) StatusCode() int { return http.StatusForbidden }

func (e *OperationForbiddenError) Is(target error) bool { return target == ErrForbidden }

// InvalidSelectionError indicates a managed-resources selection violates
// the exclusivity/completeness rules, or a request payload is invalid.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string { return e.Reason }

func (e *InvalidSelectionError) StatusCode() int { return http.StatusBadRequest }

func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }

// MissingHeaderError indicates a required caller-identity header is absent.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("missing required header: %s", e.Header)
}

func (e *MissingHeaderError) StatusCode() int { return http.StatusBadRequest }

// AuthorityError wraps a transport or protocol failure from the resource
// authority. CallInfo identifies who the call was made for, Task names the
// call's purpose.
type AuthorityError struct {
	CallInfo string
	Task     string
	Err      error
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %v", e.Task, e.CallInfo, e.Err)
}

func (e *AuthorityError) StatusCode() int { return http.StatusInternalServerError }

func (e *AuthorityError) Unwrap() error { return e.Err }

func (e *AuthorityError) Is(target error) bool { return target == ErrAuthority }
