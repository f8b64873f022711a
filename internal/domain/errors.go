package domain

import "errors"

// Expected business-rule failures. Callers match with errors.Is; the API
// layer maps them to status codes. Anything else coming out of a unit of
// work is wrapped as ErrLedgerFailure (money-touching ops) or returned
// as-is (reads).
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("operation not valid for current booking status")
	ErrConflict          = errors.New("date range conflicts with an existing booking")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrGuardViolation    = errors.New("guard violation")
	ErrLedgerFailure     = errors.New("ledger operation failed")
	ErrValidation        = errors.New("invalid input")
)
