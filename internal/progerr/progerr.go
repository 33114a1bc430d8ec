// Package progerr defines the flat error enumeration returned by the lottery
// program.
//
// Every failure the engine reports is an *Error carrying a stable numeric
// Code. Codes are part of the external contract: front-ends map them to exit
// codes and messages, and the ledger persists them in its transaction log.
//
// Errors carry no nested cause. Callers test for a kind with errors.Is
// against the sentinels below, which compare by Code only, so a detailed
// error built with New still matches its sentinel:
//
//	err := progerr.New(progerr.CodeTooManyPlayers, "pool holds %d players", n)
//	errors.Is(err, progerr.ErrTooManyPlayers) // true
package progerr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind. Values are stable across releases.
type Code uint32

const (
	CodeInvalidInstruction Code = iota
	CodeInvalidPoolLength
	CodeInsufficientFunds
	CodeInvalidPermission
	CodeInvalidAccountLength
	CodeAlreadySignin
	CodeInvalidFeeAccount
	CodeLowBalance
	CodeInvalidAccountForReward
	CodeTooManyPlayers
	CodeNotEnoughAccounts
	CodeArithmeticOverflow
	CodeAwardLedgerFull
)

var codeNames = map[Code]string{
	CodeInvalidInstruction:      "InvalidInstruction",
	CodeInvalidPoolLength:       "InvalidPoolLength",
	CodeInsufficientFunds:       "InsufficientFunds",
	CodeInvalidPermission:       "InvalidPermission",
	CodeInvalidAccountLength:    "InvalidAccountLength",
	CodeAlreadySignin:           "AlreadySignin",
	CodeInvalidFeeAccount:       "InvalidFeeAccount",
	CodeLowBalance:              "LowBalance",
	CodeInvalidAccountForReward: "InvalidAccountForReward",
	CodeTooManyPlayers:          "TooManyPlayers",
	CodeNotEnoughAccounts:       "NotEnoughAccounts",
	CodeArithmeticOverflow:      "ArithmeticOverflow",
	CodeAwardLedgerFull:         "AwardLedgerFull",
}

var codeMessages = map[Code]string{
	CodeInvalidInstruction:      "invalid instruction",
	CodeInvalidPoolLength:       "invalid pool length",
	CodeInsufficientFunds:       "insufficient funds",
	CodeInvalidPermission:       "invalid permission",
	CodeInvalidAccountLength:    "invalid account length",
	CodeAlreadySignin:           "already signed in",
	CodeInvalidFeeAccount:       "invalid fee account",
	CodeLowBalance:              "balance below ticket price",
	CodeInvalidAccountForReward: "invalid account for reward",
	CodeTooManyPlayers:          "too many players",
	CodeNotEnoughAccounts:       "not enough account keys",
	CodeArithmeticOverflow:      "arithmetic overflow",
	CodeAwardLedgerFull:         "award ledger is full",
}

// String returns the error kind name, e.g. "AlreadySignin".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Error is a program error. Message is optional detail; when empty the
// default message for Code is used.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := codeMessages[e.Code]
	if base == "" {
		base = e.Code.String()
	}
	if e.Message == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, e.Message)
}

// Is reports whether target is a program error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an Error with a formatted detail message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the program error code from err.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (Code, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInstruction      = &Error{Code: CodeInvalidInstruction}
	ErrInvalidPoolLength       = &Error{Code: CodeInvalidPoolLength}
	ErrInsufficientFunds       = &Error{Code: CodeInsufficientFunds}
	ErrInvalidPermission       = &Error{Code: CodeInvalidPermission}
	ErrInvalidAccountLength    = &Error{Code: CodeInvalidAccountLength}
	ErrAlreadySignin           = &Error{Code: CodeAlreadySignin}
	ErrInvalidFeeAccount       = &Error{Code: CodeInvalidFeeAccount}
	ErrLowBalance              = &Error{Code: CodeLowBalance}
	ErrInvalidAccountForReward = &Error{Code: CodeInvalidAccountForReward}
	ErrTooManyPlayers          = &Error{Code: CodeTooManyPlayers}
	ErrNotEnoughAccounts       = &Error{Code: CodeNotEnoughAccounts}
	ErrArithmeticOverflow      = &Error{Code: CodeArithmeticOverflow}
	ErrAwardLedgerFull         = &Error{Code: CodeAwardLedgerFull}
)
