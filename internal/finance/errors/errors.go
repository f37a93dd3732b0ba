package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

var (
	ErrInvalidItemCategory    = NewValidationError("Invalid item category")
	ErrInvalidPaymentCategory = NewValidationError("Invalid payment category")
	ErrCategoryNameRequired   = NewValidationError("Category name is required")
)

// ValidationErrors groups several field problems under one summary message.
type ValidationErrors struct {
	Msg    string
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := ve.Messages()
	if ve.Msg == "" {
		return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
	}
	return fmt.Sprintf("%s: %s", ve.Msg, strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func (ve *ValidationErrors) Messages() []string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return errorMessages
}

// ErrOrNil returns nil when nothing was collected.
func (ve *ValidationErrors) ErrOrNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}

var ErrNotFound = errors.New("not found")

// NewNotFoundError wraps ErrNotFound with the missing entity, e.g. "Transaction not found".
func NewNotFoundError(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ConflictError reports an operation refused because of existing references.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

var ErrCategoryInUse = &ConflictError{Msg: "Cannot delete category: it is currently in use by one or more transactions."}

func IsConflict(err error) bool {
	var conflictError *ConflictError
	return errors.As(err, &conflictError)
}
