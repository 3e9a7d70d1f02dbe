// Package config loads the costing defaults and approval thresholds from a
// TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"installcost/costing"
)

// DefaultPath is used when COSTING_CONFIG is not set.
const DefaultPath = "costing.toml"

// Config is the application configuration.
type Config struct {
	Costing  CostingConfig  `toml:"costing"`
	Approval ApprovalConfig `toml:"approval"`
}

// CostingConfig holds the settings new calculations start with.
type CostingConfig struct {
	ExchangeRate  float64 `toml:"exchange_rate"`
	FeePercent    float64 `toml:"fee_percent"`
	TargetMargin  float64 `toml:"target_margin"`
	OfferCurrency string  `toml:"offer_currency"`
}

// ApprovalConfig holds the auto-approval thresholds.
type ApprovalConfig struct {
	MinAdvancePercent float64 `toml:"min_advance_percent"`
	PriceCeiling      float64 `toml:"price_ceiling"`
	CeilingCurrency   string  `toml:"ceiling_currency"`
	MaxPaymentDays    int     `toml:"max_payment_days"`
	MinMarginPercent  float64 `toml:"min_margin_percent"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Costing: CostingConfig{
			ExchangeRate:  4.3,
			FeePercent:    1.6,
			TargetMargin:  10,
			OfferCurrency: string(costing.DomesticCurrency),
		},
		Approval: ApprovalConfig{
			MinAdvancePercent: 50,
			PriceCeiling:      100_000,
			CeilingCurrency:   string(costing.ForeignCurrency),
			MaxPaymentDays:    14,
			MinMarginPercent:  7,
		},
	}
}

// Path returns the config file location from COSTING_CONFIG.
func Path() string {
	if p := os.Getenv("COSTING_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load decodes path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot price with.
func (c Config) Validate() error {
	if c.Costing.ExchangeRate <= 0 {
		return fmt.Errorf("config: costing.exchange_rate must be positive, got %v", c.Costing.ExchangeRate)
	}
	if !costing.Currency(c.Costing.OfferCurrency).Valid() {
		return fmt.Errorf("config: unknown costing.offer_currency %q", c.Costing.OfferCurrency)
	}
	if !costing.Currency(c.Approval.CeilingCurrency).Valid() {
		return fmt.Errorf("config: unknown approval.ceiling_currency %q", c.Approval.CeilingCurrency)
	}
	if c.Approval.MaxPaymentDays < 0 {
		return fmt.Errorf("config: approval.max_payment_days must not be negative")
	}
	return nil
}

// Settings returns the settings a new calculation document starts with.
func (c Config) Settings() costing.Settings {
	return costing.Settings{
		ExchangeRate:  decimal.NewFromFloat(c.Costing.ExchangeRate),
		FeePercent:    decimal.NewFromFloat(c.Costing.FeePercent),
		TargetMargin:  decimal.NewFromFloat(c.Costing.TargetMargin),
		OfferCurrency: costing.Currency(c.Costing.OfferCurrency),
	}
}

// ApprovalRules converts the thresholds for the engine.
func (c Config) ApprovalRules() costing.ApprovalRules {
	return costing.ApprovalRules{
		MinAdvancePercent: decimal.NewFromFloat(c.Approval.MinAdvancePercent),
		PriceCeiling:      decimal.NewFromFloat(c.Approval.PriceCeiling),
		CeilingCurrency:   costing.Currency(c.Approval.CeilingCurrency),
		MaxPaymentDays:    c.Approval.MaxPaymentDays,
		MinMarginPercent:  decimal.NewFromFloat(c.Approval.MinMarginPercent),
	}
}
