package memory

import (
	"context"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/timelocked-savings-ledger/internal/interfaces"
	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/models"
)

// MemoryDepositStore is an in-memory implementation of interfaces.DepositStore.
// Each owner gets an append-only slice; the slice position is the deposit
// index, so withdrawn deposits keep their slot and refs stay stable.
// Safe for concurrent use.
type MemoryDepositStore struct {
	mu       sync.Mutex
	deposits map[string][]models.Deposit // owner -> append-only deposit sequence
}

// NewMemoryDepositStore creates an empty MemoryDepositStore.
func NewMemoryDepositStore() *MemoryDepositStore {
	return &MemoryDepositStore{
		deposits: make(map[string][]models.Deposit),
	}
}

// AppendDeposit stores d at the owner's next index and returns it.
func (m *MemoryDepositStore) AppendDeposit(ctx context.Context, d models.Deposit) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := uint64(len(m.deposits[d.Owner]))
	d.Index = index
	m.deposits[d.Owner] = append(m.deposits[d.Owner], d)
	return index, nil
}

func (m *MemoryDepositStore) GetDeposit(ctx context.Context, owner string, index uint64) (models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.deposits[owner]
	if index >= uint64(len(seq)) {
		return models.Deposit{}, fmt.Errorf("%w: %s/%d", models.ErrDepositNotFound, owner, index)
	}
	return seq[index], nil
}

func (m *MemoryDepositStore) SetDepositState(ctx context.Context, owner string, index uint64, state models.DepositState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.deposits[owner]
	if index >= uint64(len(seq)) {
		return fmt.Errorf("%w: %s/%d", models.ErrDepositNotFound, owner, index)
	}
	seq[index].State = state
	return nil
}

// DepositsByOwner returns a copy of the owner's full sequence so callers
// cannot mutate internal state.
func (m *MemoryDepositStore) DepositsByOwner(ctx context.Context, owner string) ([]models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.deposits[owner]
	copied := make([]models.Deposit, len(seq))
	copy(copied, seq)
	return copied, nil
}

func (m *MemoryDepositStore) ActiveDeposits(ctx context.Context) ([]models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Deposit
	for _, seq := range m.deposits {
		for _, d := range seq {
			if d.State == models.DepositActive {
				result = append(result, d)
			}
		}
	}
	return result, nil
}

// Compile-time check: ensure MemoryDepositStore implements DepositStore
var _ interfaces.DepositStore = (*MemoryDepositStore)(nil)
