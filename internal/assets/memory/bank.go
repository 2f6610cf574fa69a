package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/timelocked-savings-ledger/internal/interfaces"
)

// ErrInsufficientFunds is returned when a transfer would overdraw the
// source account.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Bank is an in-memory fungible-asset bank implementing
// interfaces.AssetBank. The ledger's funds sit in a designated vault
// account; TransferIn moves tokens into it and TransferOut moves tokens
// out of it. Safe for concurrent use.
type Bank struct {
	mu       sync.Mutex
	vault    string
	balances map[string]decimal.Decimal
}

// NewBank creates a Bank whose vault account is the given holder.
func NewBank(vault string) *Bank {
	return &Bank{
		vault:    vault,
		balances: make(map[string]decimal.Decimal),
	}
}

// Credit mints amount into a holder's balance. Used to fund accounts in
// tests and local deployments; a real asset backend has its own issuance.
func (b *Bank) Credit(holder string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[holder] = b.balance(holder).Add(amount)
}

func (b *Bank) TransferIn(ctx context.Context, from string, amount decimal.Decimal) error {
	return b.move(from, b.vault, amount)
}

func (b *Bank) TransferOut(ctx context.Context, to string, amount decimal.Decimal) error {
	return b.move(b.vault, to, amount)
}

func (b *Bank) BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance(holder), nil
}

func (b *Bank) move(from, to string, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("negative transfer amount %s", amount)
	}
	if b.balance(from).Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from, b.balance(from), amount)
	}
	b.balances[from] = b.balance(from).Sub(amount)
	b.balances[to] = b.balance(to).Add(amount)
	return nil
}

// balance reads a holder's balance; callers must hold the mutex.
func (b *Bank) balance(holder string) decimal.Decimal {
	if bal, ok := b.balances[holder]; ok {
		return bal
	}
	return decimal.Zero
}

var _ interfaces.AssetBank = (*Bank)(nil)
