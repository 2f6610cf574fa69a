package models

import "errors"

// Domain errors shared by the ledger and its storage implementations.
// Every failed operation rolls back completely; callers can match these
// with errors.Is to learn exactly which precondition failed.
var (
	ErrInvalidAmount    = errors.New("invalid deposit amount")
	ErrDepositNotFound  = errors.New("deposit not found")
	ErrAlreadyWithdrawn = errors.New("deposit already withdrawn")
	ErrTransferFailed   = errors.New("asset transfer failed")
	ErrUnauthorized     = errors.New("caller is not the administrator")
)
