package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositState tracks the lifecycle of a deposit. A deposit starts Active
// and transitions to Withdrawn exactly once; there is no way back.
type DepositState string

const (
	DepositActive    DepositState = "active"
	DepositWithdrawn DepositState = "withdrawn"
)

// Deposit represents a single locked sum belonging to one owner.
// Amount and StartTime are fixed at creation; only State ever changes.
type Deposit struct {
	Owner     string          // principal that owns this deposit
	Index     uint64          // position in the owner's append-only sequence
	Amount    decimal.Decimal // locked principal, always positive
	StartTime time.Time       // when the lock started
	State     DepositState
}

// DepositRef identifies a deposit as (owner, index). Indexes are never
// reused or compacted, so a ref stays valid after withdrawal.
type DepositRef struct {
	Owner string
	Index uint64
}

// Totals are the ledger-wide aggregates used by the solvency check.
type Totals struct {
	// PrincipalLocked is the sum of Amount over all Active deposits.
	// Maintained incrementally; must always match a recomputation
	// from the stored deposits.
	PrincipalLocked decimal.Decimal
	// RewardsReserved is the sum of rewards payable to all Active
	// deposits that have passed the minimum lock, priced at this moment.
	RewardsReserved decimal.Decimal
}
