package services

import "errors"

// Error classes. Every error a service returns to a caller either wraps one
// of these or is an unexpected infrastructure failure.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrFailedPrecondition = errors.New("failed precondition")
)

// Error is a classified service error with a caller-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrInvalidAmount          = &Error{ErrInvalidArgument, "amount must be a positive number"}
	ErrUsernameTaken          = &Error{ErrConflict, "Username already exists."}
	ErrInvalidCredentials     = &Error{ErrUnauthorized, "Invalid credentials."}
	ErrUserNotFound           = &Error{ErrNotFound, "User not found."}
	ErrInsufficientBalance    = &Error{ErrFailedPrecondition, "Insufficient balance."}
	ErrPaymentNotSuccessful   = &Error{ErrFailedPrecondition, "Payment not successful"}
	ErrPaymentMissingUsername = &Error{ErrFailedPrecondition, "Payment metadata has no username"}
)

func invalid(msg string) error { return &Error{ErrInvalidArgument, msg} }
