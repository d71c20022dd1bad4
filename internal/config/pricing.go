package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// PricingConfig carries platform-wide pricing defaults read from pricing.yml.
type PricingConfig struct {
	DefaultMarginPercent float64 `mapstructure:"defaultMarginPercent"`
	VATPercent           float64 `mapstructure:"vatPercent"`
	InvoiceDueDays       int     `mapstructure:"invoiceDueDays"`
	Currency             string  `mapstructure:"currency"`
	InvoiceNumberFormat  string  `mapstructure:"invoiceNumberFormat"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		DefaultMarginPercent: 25,
		VATPercent:           5,
		InvoiceDueDays:       30,
		Currency:             "AED",
		InvoiceNumberFormat:  "INV-{YYYY}{MM}-{SEQ5}",
	}
}

func (c PricingConfig) DefaultMargin() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultMarginPercent)
}

func (c PricingConfig) VAT() decimal.Decimal {
	return decimal.NewFromFloat(c.VATPercent)
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewStaticPricingConfigHolder returns a holder that never reloads.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPricingConfigHolder(appCfg Config) (*PricingConfigHolder, error) {
	v := viper.New()

	if appCfg.PricingConfigPath != "" {
		v.SetConfigFile(appCfg.PricingConfigPath)
	} else {
		v.SetConfigName("pricing")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/eventory")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("EVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.defaultMarginPercent", defaults.DefaultMarginPercent)
	v.SetDefault("pricing.vatPercent", defaults.VATPercent)
	v.SetDefault("pricing.invoiceDueDays", defaults.InvoiceDueDays)
	v.SetDefault("pricing.currency", defaults.Currency)
	v.SetDefault("pricing.invoiceNumberFormat", defaults.InvoiceNumberFormat)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist; the search path is optional
		if appCfg.PricingConfigPath != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated PricingConfig
			if err := v.UnmarshalKey("pricing", &updated); err != nil {
				log.Printf("[pricing-config] reload failed: %v", err)
				return
			}
			if err := validatePricingConfig(updated); err != nil {
				log.Printf("[pricing-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[pricing-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.DefaultMarginPercent < 0 {
		return errors.New("pricing.defaultMarginPercent cannot be negative")
	}
	if cfg.VATPercent < 0 || cfg.VATPercent > 100 {
		return errors.New("pricing.vatPercent must be between 0 and 100")
	}
	if cfg.InvoiceDueDays <= 0 {
		return errors.New("pricing.invoiceDueDays must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("pricing.currency is required")
	}
	if !strings.Contains(cfg.InvoiceNumberFormat, "{SEQ") {
		return errors.New("pricing.invoiceNumberFormat must contain a {SEQn} token")
	}
	return nil
}
