package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositRecorded is published after a deposit commits.
// The (owner, amount, deposit_index) field order is a compatibility
// contract for downstream consumers and must not be reordered.
type DepositRecorded struct {
	Owner        string          `json:"owner"`
	Amount       decimal.Decimal `json:"amount"`
	DepositIndex uint64          `json:"deposit_index"`
	EventID      string          `json:"event_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
