package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/timelocked-savings-ledger/internal/reward"
)

// Defaults for the rate constants. 2% base reward after a 30 day lock,
// +1% for every extra 30 days held, 10% penalty on early exit.
const (
	DefaultMinLockDays     = 30
	DefaultBonusPeriodDays = 30
	DefaultBaseRate        = 2
	DefaultBonusRate       = 1
	DefaultPenaltyRate     = 10
	DefaultRateDenominator = 100
)

// Config holds everything the server needs; all of it comes from the
// environment (optionally seeded from a .env file) and is fixed for the
// lifetime of the ledger instance.
type Config struct {
	Port         string
	DatabaseURL  string
	KafkaBrokers []string

	AdminPrincipal   string
	VaultAccount     string
	MinDepositAmount decimal.Decimal

	RewardParams reward.Params
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AdminPrincipal: getEnv("ADMIN_PRINCIPAL", "admin"),
		VaultAccount:   getEnv("VAULT_ACCOUNT", "savings-vault"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	minDeposit := getEnv("MIN_DEPOSIT_AMOUNT", "0")
	amount, err := decimal.NewFromString(minDeposit)
	if err != nil {
		return Config{}, fmt.Errorf("parsing MIN_DEPOSIT_AMOUNT %q: %w", minDeposit, err)
	}
	cfg.MinDepositAmount = amount

	minLockDays, err := getEnvInt("MIN_LOCK_PERIOD_DAYS", DefaultMinLockDays)
	if err != nil {
		return Config{}, err
	}
	bonusDays, err := getEnvInt("BONUS_PERIOD_DAYS", DefaultBonusPeriodDays)
	if err != nil {
		return Config{}, err
	}
	baseRate, err := getEnvInt("BASE_RATE", DefaultBaseRate)
	if err != nil {
		return Config{}, err
	}
	bonusRate, err := getEnvInt("BONUS_RATE", DefaultBonusRate)
	if err != nil {
		return Config{}, err
	}
	penaltyRate, err := getEnvInt("PENALTY_RATE", DefaultPenaltyRate)
	if err != nil {
		return Config{}, err
	}
	denominator, err := getEnvInt("RATE_DENOMINATOR", DefaultRateDenominator)
	if err != nil {
		return Config{}, err
	}

	cfg.RewardParams = reward.Params{
		MinLockPeriod:   time.Duration(minLockDays) * 24 * time.Hour,
		BonusPeriod:     time.Duration(bonusDays) * 24 * time.Hour,
		BaseRate:        baseRate,
		BonusRate:       bonusRate,
		PenaltyRate:     penaltyRate,
		RateDenominator: denominator,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", key, value, err)
	}
	return parsed, nil
}
