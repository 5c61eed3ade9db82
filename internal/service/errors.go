package service

import (
	"fmt"
	"strings"

	"go-inventory-catalog/pkg/validator"
)

// ValidationError carries one entry per failed field.
type ValidationError struct {
	Fields []*validator.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports a missing resource or an empty result that callers treat as absent.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// StorageError wraps a persistence failure; its message is passed through to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// TransactionError means an import batch could not be committed; no counts are valid.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string { return fmt.Sprintf("transaction failed: %v", e.Err) }
func (e *TransactionError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func validateInput(in interface{}) error {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
