package savings

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/interfaces"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models/events"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/reward"
)

// Kafka topics for ledger notifications.
const (
	TopicDepositRecorded     = "deposit_recorded"
	TopicWithdrawalCompleted = "withdrawal_completed"
)

// Config fixes the ledger's identity and policy knobs at creation time.
type Config struct {
	// AdminPrincipal is the only caller allowed to extract surplus.
	AdminPrincipal string
	// VaultAccount is the bank account the ledger holds funds in.
	VaultAccount string
	// MinDepositAmount, when positive, rejects deposits below it. Used
	// to keep amounts small enough to truncate to a zero reward out of
	// the ledger entirely. Zero disables the floor.
	MinDepositAmount decimal.Decimal
}

// Ledger is the time-locked savings engine. It owns the deposit
// collection through its store, keeps the aggregate principal total in
// lockstep with it, and consults the reward policy for every payout.
//
// Every mutating operation runs under one lock covering all ledger state,
// including the external transfers it triggers, so no caller can ever
// observe or commit against an intermediate state.
type Ledger struct {
	mu     sync.RWMutex
	store  interfaces.DepositStore
	bank   interfaces.AssetBank
	events interfaces.EventPublisher
	policy reward.Policy
	cfg    Config

	principalLocked decimal.Decimal
	clock           func() time.Time
}

// NewLedger wires the engine to its collaborators and primes the
// principal total from whatever deposits the store already holds.
func NewLedger(ctx context.Context, store interfaces.DepositStore, bank interfaces.AssetBank, publisher interfaces.EventPublisher, policy reward.Policy, cfg Config) (*Ledger, error) {
	l := &Ledger{
		store:           store,
		bank:            bank,
		events:          publisher,
		policy:          policy,
		cfg:             cfg,
		principalLocked: decimal.Zero,
		clock:           time.Now,
	}
	total, err := l.recomputePrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("priming principal total: %w", err)
	}
	l.principalLocked = total
	return l, nil
}

// WithClock overrides the ledger clock for deterministic tests.
func (l *Ledger) WithClock(clock func() time.Time) {
	if clock == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = clock
}

// Deposit locks amount for owner and returns the new deposit's ref.
// The transfer-in must succeed before any state is written; if the store
// append fails afterwards, the funds are sent back so nothing partial
// survives.
func (l *Ledger) Deposit(ctx context.Context, owner string, amount decimal.Decimal) (models.DepositRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.Cmp(decimal.Zero) <= 0 {
		return models.DepositRef{}, fmt.Errorf("%w: amount must be positive, got %s", models.ErrInvalidAmount, amount)
	}
	if l.cfg.MinDepositAmount.IsPositive() && amount.Cmp(l.cfg.MinDepositAmount) < 0 {
		return models.DepositRef{}, fmt.Errorf("%w: amount %s is below the minimum %s", models.ErrInvalidAmount, amount, l.cfg.MinDepositAmount)
	}

	if err := l.bank.TransferIn(ctx, owner, amount); err != nil {
		return models.DepositRef{}, fmt.Errorf("%w: transfer-in from %s: %v", models.ErrTransferFailed, owner, err)
	}

	d := models.Deposit{
		Owner:     owner,
		Amount:    amount,
		StartTime: l.clock(),
		State:     models.DepositActive,
	}
	index, err := l.store.AppendDeposit(ctx, d)
	if err != nil {
		// Undo the transfer-in; the deposit never happened.
		if refundErr := l.bank.TransferOut(ctx, owner, amount); refundErr != nil {
			log.Printf("savings: refund of %s to %s failed after store error: %v", amount, owner, refundErr)
		}
		return models.DepositRef{}, fmt.Errorf("storing deposit: %w", err)
	}
	l.principalLocked = l.principalLocked.Add(amount)

	l.publish(TopicDepositRecorded, events.DepositRecorded{
		Owner:        owner,
		Amount:       amount,
		DepositIndex: index,
		EventID:      uuid.New().String(),
		OccurredAt:   l.clock(),
	})
	return models.DepositRef{Owner: owner, Index: index}, nil
}

// Withdraw pays out the deposit at ref and marks it Withdrawn. A matured
// deposit pays principal plus reward; an early exit pays principal minus
// penalty, reported as a negative rewardOrPenalty. The Active check runs
// before any transfer or mutation, and the state flip commits before the
// transfer-out starts, so a second withdrawal of the same ref can never
// reach the bank. A failed transfer-out restores the deposit and totals
// under the same held lock.
func (l *Ledger) Withdraw(ctx context.Context, caller string, ref models.DepositRef) (principalPaid, rewardOrPenalty decimal.Decimal, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, err := l.store.GetDeposit(ctx, ref.Owner, ref.Index)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if d.Owner != caller {
		// Do not reveal other owners' deposits.
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: no deposit %d for %s", models.ErrDepositNotFound, ref.Index, caller)
	}
	if d.State != models.DepositActive {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: deposit %d of %s", models.ErrAlreadyWithdrawn, ref.Index, ref.Owner)
	}

	elapsed := l.clock().Sub(d.StartTime)
	principalPaid = d.Amount
	if elapsed >= l.policy.Params().MinLockPeriod {
		rewardOrPenalty = l.policy.Reward(reward.Inputs{Amount: d.Amount, Elapsed: elapsed})
	} else {
		rewardOrPenalty = l.policy.Penalty(d.Amount).Neg()
	}
	payout := principalPaid.Add(rewardOrPenalty)

	// Commit the terminal state before touching the bank.
	if err := l.store.SetDepositState(ctx, ref.Owner, ref.Index, models.DepositWithdrawn); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("marking deposit withdrawn: %w", err)
	}
	l.principalLocked = l.principalLocked.Sub(d.Amount)

	if err := l.bank.TransferOut(ctx, d.Owner, payout); err != nil {
		// Roll back: the deposit stays Active, totals unchanged.
		if restoreErr := l.store.SetDepositState(ctx, ref.Owner, ref.Index, models.DepositActive); restoreErr != nil {
			log.Printf("savings: restoring deposit %s/%d after failed payout: %v", ref.Owner, ref.Index, restoreErr)
		}
		l.principalLocked = l.principalLocked.Add(d.Amount)
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: payout of %s to %s: %v", models.ErrTransferFailed, payout, d.Owner, err)
	}

	l.publish(TopicWithdrawalCompleted, events.WithdrawalCompleted{
		Owner:               d.Owner,
		DepositIndex:        ref.Index,
		PrincipalPaid:       principalPaid,
		RewardOrPenaltyPaid: rewardOrPenalty,
		EventID:             uuid.New().String(),
		OccurredAt:          l.clock(),
	})
	return principalPaid, rewardOrPenalty, nil
}

// ExtractSurplus pays the administrator whatever the vault holds beyond
// the ledger's live liabilities. Liabilities are what every Active
// deposit would be paid if withdrawn right now, so depositor funds can
// never leave through this path. A zero surplus is a successful no-op.
func (l *Ledger) ExtractSurplus(ctx context.Context, caller string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.cfg.AdminPrincipal {
		return decimal.Zero, fmt.Errorf("%w: %s", models.ErrUnauthorized, caller)
	}

	held, err := l.bank.BalanceOf(ctx, l.cfg.VaultAccount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading vault balance: %w", err)
	}
	liabilities, err := l.liabilities(ctx, l.clock())
	if err != nil {
		return decimal.Zero, err
	}

	surplus := held.Sub(liabilities)
	if surplus.Cmp(decimal.Zero) <= 0 {
		return decimal.Zero, nil
	}
	if err := l.bank.TransferOut(ctx, l.cfg.AdminPrincipal, surplus); err != nil {
		return decimal.Zero, fmt.Errorf("%w: surplus payout: %v", models.ErrTransferFailed, err)
	}
	return surplus, nil
}

// DepositView is the read-only projection of one deposit.
type DepositView struct {
	Owner     string              `json:"owner"`
	Index     uint64              `json:"deposit_index"`
	Amount    decimal.Decimal     `json:"amount"`
	StartTime time.Time           `json:"start_time"`
	State     models.DepositState `json:"state"`
	// RewardIfWithdrawnNow is zero for withdrawn deposits and for
	// active ones still inside the minimum lock.
	RewardIfWithdrawnNow decimal.Decimal `json:"reward_if_withdrawn_now"`
}

// GetDeposit projects a deposit without mutating anything.
func (l *Ledger) GetDeposit(ctx context.Context, owner string, index uint64) (DepositView, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	d, err := l.store.GetDeposit(ctx, owner, index)
	if err != nil {
		return DepositView{}, err
	}
	return l.project(d), nil
}

// ListDeposits projects all deposits of one owner, withdrawn included.
func (l *Ledger) ListDeposits(ctx context.Context, owner string) ([]DepositView, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	deposits, err := l.store.DepositsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]DepositView, 0, len(deposits))
	for _, d := range deposits {
		views = append(views, l.project(d))
	}
	return views, nil
}

// Totals reports the incrementally maintained principal total plus the
// rewards currently reserved for matured Active deposits.
func (l *Ledger) Totals(ctx context.Context) (models.Totals, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	reserved, err := l.rewardsReserved(ctx, l.clock())
	if err != nil {
		return models.Totals{}, err
	}
	return models.Totals{
		PrincipalLocked: l.principalLocked,
		RewardsReserved: reserved,
	}, nil
}

// RecomputePrincipal derives the locked principal from the store alone.
// It must always agree with the incremental total; tests lean on this.
func (l *Ledger) RecomputePrincipal(ctx context.Context) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recomputePrincipal(ctx)
}

func (l *Ledger) recomputePrincipal(ctx context.Context) (decimal.Decimal, error) {
	active, err := l.store.ActiveDeposits(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range active {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (l *Ledger) project(d models.Deposit) DepositView {
	view := DepositView{
		Owner:                d.Owner,
		Index:                d.Index,
		Amount:               d.Amount,
		StartTime:            d.StartTime,
		State:                d.State,
		RewardIfWithdrawnNow: decimal.Zero,
	}
	if d.State == models.DepositActive {
		view.RewardIfWithdrawnNow = l.policy.Reward(reward.Inputs{
			Amount:  d.Amount,
			Elapsed: l.clock().Sub(d.StartTime),
		})
	}
	return view
}

// liabilities is the exact amount owed if every Active deposit were
// withdrawn at instant now: principal plus reward for matured deposits,
// principal minus penalty for the rest.
func (l *Ledger) liabilities(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	active, err := l.store.ActiveDeposits(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	minLock := l.policy.Params().MinLockPeriod
	for _, d := range active {
		elapsed := now.Sub(d.StartTime)
		if elapsed >= minLock {
			total = total.Add(d.Amount).Add(l.policy.Reward(reward.Inputs{Amount: d.Amount, Elapsed: elapsed}))
		} else {
			total = total.Add(d.Amount).Sub(l.policy.Penalty(d.Amount))
		}
	}
	return total, nil
}

func (l *Ledger) rewardsReserved(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	active, err := l.store.ActiveDeposits(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	minLock := l.policy.Params().MinLockPeriod
	for _, d := range active {
		elapsed := now.Sub(d.StartTime)
		if elapsed >= minLock {
			total = total.Add(l.policy.Reward(reward.Inputs{Amount: d.Amount, Elapsed: elapsed}))
		}
	}
	return total, nil
}

func (l *Ledger) publish(topic string, event any) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(topic, event); err != nil {
		log.Printf("savings: publishing %s event: %v", topic, err)
	}
}
