package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalCompleted is published after a withdrawal commits.
// The (owner, deposit_index, principal_paid, reward_or_penalty_paid)
// field order is a compatibility contract and must not be reordered.
// RewardOrPenaltyPaid is negative when the early-exit penalty applied.
type WithdrawalCompleted struct {
	Owner               string          `json:"owner"`
	DepositIndex        uint64          `json:"deposit_index"`
	PrincipalPaid       decimal.Decimal `json:"principal_paid"`
	RewardOrPenaltyPaid decimal.Decimal `json:"reward_or_penalty_paid"`
	EventID             string          `json:"event_id"`
	OccurredAt          time.Time       `json:"occurred_at"`
}
