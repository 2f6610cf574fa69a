package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// AssetBank is the external fungible-asset interface. The ledger never
// holds tokens itself; it instructs the bank to move them between
// principals and the ledger's vault account. Any error is treated as a
// hard abort of the operation in progress.
type AssetBank interface {
	// TransferIn moves amount from a principal into the ledger's vault.
	TransferIn(ctx context.Context, from string, amount decimal.Decimal) error
	// TransferOut moves amount from the ledger's vault to a principal.
	TransferOut(ctx context.Context, to string, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error)
}
