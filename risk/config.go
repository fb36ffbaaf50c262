package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is wrapped by every Config validation failure
var ErrInvalidConfig = errors.New("invalid money manager config")

// Config is fixed at construction; only Level and balances change afterwards
type Config struct {
	StartingBalance decimal.Decimal
	BaseStake       decimal.Decimal
	Level           Level
	MinStake        decimal.Decimal
	MaxStakePct     decimal.Decimal // Max stake as a fraction of current balance
	DailyLossLimit  decimal.Decimal // Fraction of starting balance
	ProfitTarget    decimal.Decimal // Fraction of starting balance
}

// DefaultConfig returns the standard settings for the given balance
func DefaultConfig(balance decimal.Decimal) Config {
	return Config{
		StartingBalance: balance,
		BaseStake:       decimal.NewFromFloat(0.35),
		Level:           LevelMedium,
		MinStake:        decimal.NewFromFloat(0.35),
		MaxStakePct:     decimal.NewFromFloat(0.20),
		DailyLossLimit:  decimal.NewFromFloat(0.30),
		ProfitTarget:    decimal.NewFromFloat(0.10),
	}
}

// SmallCapitalConfig picks conservative settings tiered by account size
func SmallCapitalConfig(balance, stake decimal.Decimal) Config {
	cfg := DefaultConfig(balance)
	cfg.BaseStake = stake

	switch {
	case balance.LessThanOrEqual(decimal.NewFromInt(10)):
		cfg.Level = LevelLow
		cfg.MaxStakePct = decimal.NewFromFloat(0.15)
		cfg.DailyLossLimit = decimal.NewFromFloat(0.25)
		cfg.ProfitTarget = decimal.NewFromFloat(0.10)
	case balance.LessThanOrEqual(decimal.NewFromInt(25)):
		cfg.Level = LevelMedium
		cfg.MaxStakePct = decimal.NewFromFloat(0.18)
		cfg.DailyLossLimit = decimal.NewFromFloat(0.30)
		cfg.ProfitTarget = decimal.NewFromFloat(0.12)
	case balance.LessThanOrEqual(decimal.NewFromInt(50)):
		cfg.Level = LevelMedium
		cfg.MaxStakePct = decimal.NewFromFloat(0.20)
		cfg.DailyLossLimit = decimal.NewFromFloat(0.30)
		cfg.ProfitTarget = decimal.NewFromFloat(0.15)
	default:
		cfg.Level = LevelHigh
		cfg.MaxStakePct = decimal.NewFromFloat(0.20)
		cfg.DailyLossLimit = decimal.NewFromFloat(0.35)
		cfg.ProfitTarget = decimal.NewFromFloat(0.20)
	}
	return cfg
}

// Validate checks the configuration for values the manager cannot work with
func (c Config) Validate() error {
	if !c.StartingBalance.IsPositive() {
		return fmt.Errorf("%w: starting balance must be positive, got %s", ErrInvalidConfig, c.StartingBalance)
	}
	if !c.MinStake.IsPositive() {
		return fmt.Errorf("%w: min stake must be positive, got %s", ErrInvalidConfig, c.MinStake)
	}
	if c.BaseStake.IsNegative() {
		return fmt.Errorf("%w: base stake must not be negative, got %s", ErrInvalidConfig, c.BaseStake)
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: unknown risk level %d", ErrInvalidConfig, int(c.Level))
	}
	for name, pct := range map[string]decimal.Decimal{
		"max stake pct":    c.MaxStakePct,
		"daily loss limit": c.DailyLossLimit,
		"profit target":    c.ProfitTarget,
	} {
		if !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s must be in (0, 1], got %s", ErrInvalidConfig, name, pct)
		}
	}
	return nil
}
