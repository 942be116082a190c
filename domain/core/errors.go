package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Contract violations: precondition failures on the caller side
	ErrContractViolation   = errors.New("contract violation")
	ErrInconsistentColumns = fmt.Errorf("%w: inconsistent column set", ErrContractViolation)
	ErrDuplicateColumn     = fmt.Errorf("%w: duplicate column name", ErrContractViolation)
	ErrInvalidConfig       = fmt.Errorf("%w: configuration out of range", ErrContractViolation)
	ErrInvalidSegment      = fmt.Errorf("%w: invalid segment column", ErrContractViolation)

	// Ingestion errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyInput        = errors.New("input has no header row")
)

// NewContractError annotates a contract violation with the offending detail.
func NewContractError(base error, detail string) error {
	return fmt.Errorf("%w: %s", base, detail)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
