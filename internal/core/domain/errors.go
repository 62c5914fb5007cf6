package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a core failure so callers can map it to a precise
// response without parsing message strings.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindConstraintViolation ErrorKind = "CONSTRAINT_VIOLATION"
	KindScopeViolation      ErrorKind = "SCOPE_VIOLATION"
	KindOwnershipViolation  ErrorKind = "OWNERSHIP_VIOLATION"
	KindTransactionFailure  ErrorKind = "TRANSACTION_FAILURE"
	KindDuplicateRequest    ErrorKind = "DUPLICATE_REQUEST"
)

// Error is a structured domain error: a kind, a human-readable message and
// the parameters needed to render an actionable client message
// ("minimum down payment is X") instead of a generic failure string.
type Error struct {
	Kind    ErrorKind
	Message string
	Params  map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound reports a missing referenced entity.
func NotFound(resource string, id interface{}) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: resource + " not found",
		Params:  map[string]interface{}{"resource": resource, "id": id},
	}
}

// ConstraintViolation reports input outside product-defined bounds.
func ConstraintViolation(message string, params map[string]interface{}) *Error {
	return &Error{Kind: KindConstraintViolation, Message: message, Params: params}
}

// ScopeViolation reports a caller acting outside its merchant scope.
func ScopeViolation(message string, params map[string]interface{}) *Error {
	return &Error{Kind: KindScopeViolation, Message: message, Params: params}
}

// OwnershipViolation reports a cross-merchant entity reference.
func OwnershipViolation(message string, params map[string]interface{}) *Error {
	return &Error{Kind: KindOwnershipViolation, Message: message, Params: params}
}

// TransactionFailure wraps a storage-layer fault during the atomic write
// phase. When this is returned the whole write has rolled back.
func TransactionFailure(cause error) *Error {
	return &Error{
		Kind:    KindTransactionFailure,
		Message: "loan origination could not be committed",
		cause:   cause,
	}
}

// DuplicateRequest reports an origination replay whose first attempt with
// the same idempotency key is still in flight.
func DuplicateRequest(key string) *Error {
	return &Error{
		Kind:    KindDuplicateRequest,
		Message: "an origination with this idempotency key is already in progress",
		Params:  map[string]interface{}{"idempotency_key": key},
	}
}

// KindOf extracts the ErrorKind from err, or "" if err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
