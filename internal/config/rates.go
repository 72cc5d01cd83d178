package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CommissionRates is the immutable rate-table snapshot used by the
// commission calculator and the incentive aggregator. Amounts are rupees.
type CommissionRates struct {
	// DcrFixed maps partner type -> capacity (kW, canonical decimal string)
	// -> fixed commission amount.
	DcrFixed map[string]map[string]int64 `mapstructure:"dcrFixed"`

	// Per-kW fallback for DCR capacities outside the fixed table.
	DcrPerKw map[string]int64 `mapstructure:"dcrPerKw"`

	NonDcrPerKw     map[string]int64 `mapstructure:"nonDcrPerKw"`
	InverterPerUnit map[string]int64 `mapstructure:"inverterPerUnit"`

	Incentive IncentiveDefaults `mapstructure:"incentive"`
}

type IncentiveDefaults struct {
	TargetInstallations int     `mapstructure:"targetInstallations"`
	TargetCapacityKw    float64 `mapstructure:"targetCapacityKw"`
	BonusAmount         int64   `mapstructure:"bonusAmount"`
}

func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		DcrFixed: map[string]map[string]int64{
			"bdp": {"3": 6000, "5": 10000},
			"ddp": {"3": 9000, "5": 15000},
		},
		DcrPerKw:        map[string]int64{"bdp": 2000, "ddp": 3000},
		NonDcrPerKw:     map[string]int64{"bdp": 1000, "ddp": 1500},
		InverterPerUnit: map[string]int64{"bdp": 500, "ddp": 750},
		Incentive: IncentiveDefaults{
			TargetInstallations: 5,
			TargetCapacityKw:    15,
			BonusAmount:         5000,
		},
	}
}

// RatesHolder holds the current rate tables. Services snapshot the table once
// per operation so a concurrent reload never tears a computation.
type RatesHolder struct {
	current atomic.Value // holds CommissionRates
}

func NewRatesHolder() (*RatesHolder, error) {
	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/partner-crm/config")
	v.AddConfigPath("/etc/partner-crm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PARTNERCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultCommissionRates()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no rates file shipped alongside the binary, defaults apply
	} else {
		if err := v.UnmarshalKey("rates", &cfg); err != nil {
			return nil, err
		}
	}
	if err := validateCommissionRates(cfg); err != nil {
		return nil, err
	}

	holder := &RatesHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CommissionRates
		if err := v.UnmarshalKey("rates", &updated); err != nil {
			log.Printf("[rates-config] reload failed: %v", err)
			return
		}
		if err := validateCommissionRates(updated); err != nil {
			log.Printf("[rates-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[rates-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticRatesHolder wraps a fixed table, used by tests.
func NewStaticRatesHolder(cfg CommissionRates) *RatesHolder {
	holder := &RatesHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RatesHolder) Current() CommissionRates {
	return h.current.Load().(CommissionRates)
}

func validateCommissionRates(cfg CommissionRates) error {
	for _, partnerType := range []string{"bdp", "ddp"} {
		if _, ok := cfg.DcrPerKw[partnerType]; !ok {
			return fmt.Errorf("rates: missing dcrPerKw for %s", partnerType)
		}
		if _, ok := cfg.NonDcrPerKw[partnerType]; !ok {
			return fmt.Errorf("rates: missing nonDcrPerKw for %s", partnerType)
		}
		if _, ok := cfg.InverterPerUnit[partnerType]; !ok {
			return fmt.Errorf("rates: missing inverterPerUnit for %s", partnerType)
		}
		for capacity, amount := range cfg.DcrFixed[partnerType] {
			if amount <= 0 {
				return fmt.Errorf("rates: non-positive dcrFixed amount for %s/%s kW", partnerType, capacity)
			}
		}
	}
	if cfg.Incentive.TargetInstallations <= 0 || cfg.Incentive.TargetCapacityKw <= 0 {
		return errors.New("rates: incentive targets must be positive")
	}
	if cfg.Incentive.BonusAmount <= 0 {
		return errors.New("rates: incentive bonus must be positive")
	}
	return nil
}
