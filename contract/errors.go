package contract

import (
	"errors"
	"fmt"
)

// Class groups failures by how callers should react to them.
type Class uint8

const (
	ClassValidation Class = iota + 1
	ClassAuthorization
	ClassState
	ClassArithmetic
	ClassExternalCall
	ClassInvariant
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "ValidationError"
	case ClassAuthorization:
		return "AuthorizationError"
	case ClassState:
		return "StateError"
	case ClassArithmetic:
		return "ArithmeticError"
	case ClassExternalCall:
		return "ExternalCallError"
	case ClassInvariant:
		return "InvariantViolation"
	default:
		return "UnknownError"
	}
}

// Error is a typed revert. Symbol is the short machine readable reason that ends up in the
// result payload, the same strings the contract used to pass to sdk.Abort.
type Error struct {
	Class  Class
	Symbol string
	Msg    string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(class Class, symbol, msg string) *Error {
	return &Error{Class: class, Symbol: symbol, Msg: msg}
}

var (
	ErrAlreadyInitialized = newError(ClassState, "already_initialized", "contract already initialized")
	ErrNotInitialized     = newError(ClassState, "not_initialized", "contract not initialized")
	ErrPaused             = newError(ClassState, "program_paused", "program is paused")
	ErrAccountNotEmpty    = newError(ClassState, "account_not_empty", "user info still holds a balance or unclaimed rewards")
	ErrAccountNotFound    = newError(ClassState, "account_not_found", "no user info for this holder")

	ErrInvalidRate         = newError(ClassValidation, "invalid_tax_rate", "tax rate must be within 0..10000 bps")
	ErrInvalidAmount       = newError(ClassValidation, "invalid_amount", "amount must be greater than zero")
	ErrInvalidVenue        = newError(ClassValidation, "invalid_venue", "invalid venue list")
	ErrInvalidRecipient    = newError(ClassValidation, "invalid_recipient", "invalid recipient")
	ErrInsufficientBalance = newError(ClassValidation, "insufficient_balance", "holder balance below amount")
	ErrInsufficientDeposit = newError(ClassValidation, "insufficient_deposit", "holder cannot cover the storage deposit")
	ErrInvalidPayload      = newError(ClassValidation, "invalid_payload", "invalid payload")
	ErrUnknownAction       = newError(ClassValidation, "unknown_action", "unknown action")

	ErrUnauthorized = newError(ClassAuthorization, "unauthorized", "only the owner can do this")

	ErrArithmetic = newError(ClassArithmetic, "overflow", "arithmetic overflow")

	ErrSwapFailed       = newError(ClassExternalCall, "swap_failed", "all swap venues failed")
	ErrSlippageExceeded = newError(ClassExternalCall, "slippage_exceeded", "swap output below minimum")
	ErrQuoteUnavailable = newError(ClassExternalCall, "quote_unavailable", "venue returned no usable quote")
	ErrVenueUnavailable = newError(ClassExternalCall, "venue_unavailable", "venue not reachable")
	ErrCommitRejected   = newError(ClassExternalCall, "commit_rejected", "runtime rejected the transaction")

	ErrInsufficientVault  = newError(ClassInvariant, "insufficient_reward_vault", "reward vault cannot cover owed rewards")
	ErrInvariantViolation = newError(ClassInvariant, "invariant_violation", "invariant violation")
)

// ClassOf returns the class of the first typed error in err's chain, or 0.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return 0
}

// SymbolOf returns the revert symbol of the first typed error in err's chain.
func SymbolOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Symbol
	}
	if err != nil {
		return "internal"
	}
	return ""
}

// fail wraps a sentinel with call specific detail so errors.Is still matches.
func fail(sentinel *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
