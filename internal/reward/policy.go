package reward

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Params are the rate constants for a ledger instance. They are fixed at
// creation and read-only afterwards. Rates are expressed as integer
// numerators over RateDenominator (e.g. BaseRate=2, RateDenominator=100
// means 2%).
type Params struct {
	MinLockPeriod   time.Duration
	BonusPeriod     time.Duration
	BaseRate        int64
	BonusRate       int64
	PenaltyRate     int64
	RateDenominator int64
}

// Inputs binds the reward computation arguments by field name.
// Amount and Elapsed have different types on purpose: a transposed
// call site fails to compile instead of silently swapping semantics.
type Inputs struct {
	Amount  decimal.Decimal
	Elapsed time.Duration
}

// Policy converts (amount, elapsed) into reward and penalty quantities.
// It is pure: no state, no clock.
type Policy struct {
	params Params
}

func NewPolicy(p Params) (Policy, error) {
	if p.RateDenominator <= 0 {
		return Policy{}, fmt.Errorf("rate denominator must be positive, got %d", p.RateDenominator)
	}
	if p.BonusPeriod <= 0 {
		return Policy{}, fmt.Errorf("bonus period must be positive, got %s", p.BonusPeriod)
	}
	if p.BaseRate < 0 || p.BonusRate < 0 || p.PenaltyRate < 0 {
		return Policy{}, fmt.Errorf("rates must not be negative")
	}
	if p.PenaltyRate > p.RateDenominator {
		return Policy{}, fmt.Errorf("penalty rate %d exceeds denominator %d", p.PenaltyRate, p.RateDenominator)
	}
	return Policy{params: p}, nil
}

func (p Policy) Params() Params {
	return p.params
}

// Reward returns the reward owed on a deposit held for in.Elapsed.
// Zero before the minimum lock matures. Afterwards:
//
//	base  = amount * BaseRate / RateDenominator
//	bonus = amount * BonusRate * floor((elapsed-MinLock)/BonusPeriod) / RateDenominator
//
// All math truncates toward zero, so small amounts can legitimately earn
// a zero reward (e.g. amount 49 at 2/100 yields 0). That is disclosed
// behavior, not a defect; the ledger may refuse such deposits with a
// minimum-amount floor.
func (p Policy) Reward(in Inputs) decimal.Decimal {
	if in.Elapsed < p.params.MinLockPeriod {
		return decimal.Zero
	}
	denom := decimal.NewFromInt(p.params.RateDenominator)
	base := in.Amount.Mul(decimal.NewFromInt(p.params.BaseRate)).Div(denom).Floor()

	bonusPeriods := int64((in.Elapsed - p.params.MinLockPeriod) / p.params.BonusPeriod)
	if bonusPeriods == 0 {
		return base
	}
	bonus := in.Amount.
		Mul(decimal.NewFromInt(p.params.BonusRate)).
		Mul(decimal.NewFromInt(bonusPeriods)).
		Div(denom).
		Floor()
	return base.Add(bonus)
}

// Penalty returns the early-exit penalty on amount. No time dependency.
func (p Policy) Penalty(amount decimal.Decimal) decimal.Decimal {
	return amount.
		Mul(decimal.NewFromInt(p.params.PenaltyRate)).
		Div(decimal.NewFromInt(p.params.RateDenominator)).
		Floor()
}
