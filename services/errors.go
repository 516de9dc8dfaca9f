package services

import "errors"

// Typed failures callers branch on. Anything not listed here is an unexpected
// storage fault and surfaces wrapped.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidLineItem      = errors.New("cart references an unresolvable product")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrPaymentFailed        = errors.New("payment failed: insufficient funds")
	ErrInvalidTransition    = errors.New("invalid delivery status transition")
	ErrAlreadyTerminal      = errors.New("delivery already cancelled")
	ErrStaffUnavailable     = errors.New("staff member is not available")
	ErrPuzzleAnswerMismatch = errors.New("puzzle answer does not match")
	ErrNotFulfilled         = errors.New("delivery is not fulfilled yet")
	ErrAlreadyRated         = errors.New("delivery already rated")
	ErrInvalidScore         = errors.New("score must be between 0.00 and 5.00")
)
