package reward

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		MinLockPeriod:   30 * 24 * time.Hour,
		BonusPeriod:     30 * 24 * time.Hour,
		BaseRate:        2,
		BonusRate:       1,
		PenaltyRate:     10,
		RateDenominator: 100,
	}
}

func newTestPolicy(t *testing.T) Policy {
	t.Helper()
	policy, err := NewPolicy(testParams())
	require.NoError(t, err)
	return policy
}

func TestNewPolicyRejectsBadParams(t *testing.T) {
	bad := testParams()
	bad.RateDenominator = 0
	_, err := NewPolicy(bad)
	assert.Error(t, err)

	bad = testParams()
	bad.BonusPeriod = 0
	_, err = NewPolicy(bad)
	assert.Error(t, err)

	bad = testParams()
	bad.PenaltyRate = -1
	_, err = NewPolicy(bad)
	assert.Error(t, err)
}

func TestRewardBeforeMinimumLockIsZero(t *testing.T) {
	policy := newTestPolicy(t)

	got := policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(1000),
		Elapsed: 10 * 24 * time.Hour,
	})
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestRewardAtExactlyMinimumLock(t *testing.T) {
	policy := newTestPolicy(t)

	// 1000 * 2 / 100 = 20, no bonus periods yet.
	got := policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(1000),
		Elapsed: testParams().MinLockPeriod,
	})
	assert.True(t, got.Equal(decimal.NewFromInt(20)), "got %s", got)
}

func TestRewardAccruesBonusPerFullPeriod(t *testing.T) {
	policy := newTestPolicy(t)
	params := testParams()

	// Two full bonus periods past the lock: 20 base + 1000*1*2/100 bonus.
	got := policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(1000),
		Elapsed: params.MinLockPeriod + 2*params.BonusPeriod + time.Hour,
	})
	assert.True(t, got.Equal(decimal.NewFromInt(40)), "got %s", got)

	// A partial period earns nothing extra.
	got = policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(1000),
		Elapsed: params.MinLockPeriod + params.BonusPeriod - time.Minute,
	})
	assert.True(t, got.Equal(decimal.NewFromInt(20)), "got %s", got)
}

func TestRewardTruncatesSmallAmountsToZero(t *testing.T) {
	policy := newTestPolicy(t)

	// 49 * 2 / 100 = 0.98, truncated to 0. Disclosed behavior: amounts
	// below RateDenominator/BaseRate earn nothing at the base rate.
	got := policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(49),
		Elapsed: testParams().MinLockPeriod,
	})
	assert.True(t, got.IsZero(), "got %s", got)

	// 50 is the smallest amount with a non-zero base reward.
	got = policy.Reward(Inputs{
		Amount:  decimal.NewFromInt(50),
		Elapsed: testParams().MinLockPeriod,
	})
	assert.True(t, got.Equal(decimal.NewFromInt(1)), "got %s", got)
}

// The reward arguments bind by field name, so the order the slots are
// written in can never change the result. This is the regression guard
// for the amount/elapsed transposition class of bug.
func TestRewardBindingIsByNameNotPosition(t *testing.T) {
	policy := newTestPolicy(t)

	amount := decimal.NewFromInt(1000)
	elapsed := testParams().MinLockPeriod

	amountFirst := policy.Reward(Inputs{Amount: amount, Elapsed: elapsed})
	elapsedFirst := policy.Reward(Inputs{Elapsed: elapsed, Amount: amount})

	require.True(t, amountFirst.Equal(elapsedFirst))
	// Against an independently computed reference, not the policy itself.
	assert.True(t, amountFirst.Equal(decimal.NewFromInt(1000*2/100)), "got %s", amountFirst)
}

func TestPenalty(t *testing.T) {
	policy := newTestPolicy(t)

	got := policy.Penalty(decimal.NewFromInt(100))
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)

	// 49 * 10 / 100 = 4.9, truncated to 4.
	got = policy.Penalty(decimal.NewFromInt(49))
	assert.True(t, got.Equal(decimal.NewFromInt(4)), "got %s", got)
}
