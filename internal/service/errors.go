package service

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError reports caller input that breaks a business rule.
// Reason is safe to return to the caller as is.
type ValidationError struct {
	Rule   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(rule string, err error, reason string) *ValidationError {
	return &ValidationError{Rule: rule, Reason: reason, Err: err}
}

// PersistenceError reports a storage failure while running Op.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsConstraintViolation reports whether the store rejected the write for an
// integrity constraint (SQLSTATE class 23).
func (e *PersistenceError) IsConstraintViolation() bool {
	var pgErr *pgconn.PgError
	return errors.As(e.Err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

// StorageMessage is the underlying storage message, without the Op prefix.
func (e *PersistenceError) StorageMessage() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		if pgErr.Detail != "" {
			return pgErr.Message + ": " + pgErr.Detail
		}
		return pgErr.Message
	}
	return e.Err.Error()
}

func persistence(op string, err error) error {
	var pErr *PersistenceError
	if errors.As(err, &pErr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
