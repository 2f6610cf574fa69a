package interfaces

import (
	"context"

	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models"
)

// DepositStore persists the ledger's deposit collection. Withdrawn
// deposits keep their slot so (owner, index) refs stay stable.
type DepositStore interface {
	// AppendDeposit stores d under the owner's next free index and
	// returns that index.
	AppendDeposit(ctx context.Context, d models.Deposit) (uint64, error)
	// GetDeposit returns models.ErrDepositNotFound for an unknown ref.
	GetDeposit(ctx context.Context, owner string, index uint64) (models.Deposit, error)
	// SetDepositState flips the state of an existing deposit.
	SetDepositState(ctx context.Context, owner string, index uint64, state models.DepositState) error
	DepositsByOwner(ctx context.Context, owner string) ([]models.Deposit, error)
	ActiveDeposits(ctx context.Context) ([]models.Deposit, error)
}
