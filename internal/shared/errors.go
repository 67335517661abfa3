package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientFunds indicates a posting would drive the source account below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyVoid indicates a void was requested for an already voided transaction.
	ErrAlreadyVoid = errors.New("transaction already void")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates a registration conflict.
	ErrUsernameTaken = errors.New("username already exists")
)
