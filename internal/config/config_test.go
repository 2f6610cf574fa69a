package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "admin", cfg.AdminPrincipal)
	assert.Equal(t, "savings-vault", cfg.VaultAccount)
	assert.True(t, cfg.MinDepositAmount.IsZero())
	assert.Empty(t, cfg.KafkaBrokers)

	assert.Equal(t, 30*24*time.Hour, cfg.RewardParams.MinLockPeriod)
	assert.Equal(t, 30*24*time.Hour, cfg.RewardParams.BonusPeriod)
	assert.Equal(t, int64(2), cfg.RewardParams.BaseRate)
	assert.Equal(t, int64(1), cfg.RewardParams.BonusRate)
	assert.Equal(t, int64(10), cfg.RewardParams.PenaltyRate)
	assert.Equal(t, int64(100), cfg.RewardParams.RateDenominator)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("MIN_DEPOSIT_AMOUNT", "50")
	t.Setenv("MIN_LOCK_PERIOD_DAYS", "14")
	t.Setenv("BASE_RATE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.MinDepositAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 14*24*time.Hour, cfg.RewardParams.MinLockPeriod)
	assert.Equal(t, int64(5), cfg.RewardParams.BaseRate)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MIN_DEPOSIT_AMOUNT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("PENALTY_RATE", "ten")
	_, err := Load()
	assert.Error(t, err)
}
