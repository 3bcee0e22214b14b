// Package errs defines the typed failures returned by every engine
// component. Expected failures are never panics: an operation returns
// (T, error) where the error is one of four shapes, a field-tagged
// validation error, a not-found error, a business-rule error, or a
// storage error. Callers branch on the concrete type via errors.As or on
// the machine-readable code via CodeOf.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure in a machine-readable way.
type Code string

const (
	CodeRequiredField       Code = "REQUIRED_FIELD"
	CodeMaxLength           Code = "MAX_LENGTH"
	CodeInvalidID           Code = "INVALID_ID"
	CodeInvalidType         Code = "INVALID_TYPE"
	CodeInvalidStatus       Code = "INVALID_STATUS"
	CodeInvalidFrequency    Code = "INVALID_FREQUENCY"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInvalidDate         Code = "INVALID_DATE"
	CodeFutureDate          Code = "FUTURE_DATE"
	CodeInvalidVersion      Code = "INVALID_VERSION"
	CodeDuplicateName       Code = "DUPLICATE_NAME"
	CodeDuplicateID         Code = "DUPLICATE_ID"
	CodeNotFound            Code = "NOT_FOUND"
	CodeSameAccount         Code = "SAME_ACCOUNT"
	CodeInvalidDirection    Code = "INVALID_DIRECTION"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeAccountActive       Code = "ACCOUNT_ACTIVE"
	CodeHasTransactions     Code = "HAS_TRANSACTIONS"
	CodeRecurringPaused     Code = "RECURRING_PAUSED"
	CodeStorage             Code = "STORAGE_ERROR"
)

// ValidationError reports malformed input, attributed to a single field.
type ValidationError struct {
	Field   string
	Code    Code
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field string, code Code, format string, args ...any) error {
	return &ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Required reports an empty mandatory field.
func Required(field string) error {
	return Validation(field, CodeRequiredField, "%s is required", field)
}

// TooLong reports a field exceeding its maximum length.
func TooLong(field string, max int) error {
	return Validation(field, CodeMaxLength, "%s must be at most %d characters", field, max)
}

// NotFoundError reports a reference to an entity id that does not exist.
// Field names the input field that carried the id when the lookup was on
// behalf of another operation (e.g. "fromAccountId"), otherwise "id".
type NotFoundError struct {
	Entity string
	Field  string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, field, id string) error {
	return &NotFoundError{Entity: entity, Field: field, ID: id}
}

// RuleError reports a violated domain invariant. Only the registry, the
// ledger and the recurring engine produce these; the store never does.
type RuleError struct {
	Code    Code
	Message string
}

func (e *RuleError) Error() string { return e.Message }

// Rule builds a RuleError.
func Rule(code Code, format string, args ...any) error {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StorageError reports a failure of the underlying store: an I/O error,
// or a corrupt or unparseable container.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage builds a StorageError wrapping its cause.
func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// CodeOf extracts the machine-readable code from err. It returns "" when
// err is not one of the engine's typed failures.
func CodeOf(err error) Code {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Code
	}
	var n *NotFoundError
	if errors.As(err, &n) {
		return CodeNotFound
	}
	var r *RuleError
	if errors.As(err, &r) {
		return r.Code
	}
	var s *StorageError
	if errors.As(err, &s) {
		return CodeStorage
	}
	return ""
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
