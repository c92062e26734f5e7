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

// AdvancePolicy governs how much advance payment an order requires.
type AdvancePolicy struct {
	NormalCustomerMin     int   `mapstructure:"normalCustomerMin" json:"normal_customer_min"`
	NormalCustomerOptions []int `mapstructure:"normalCustomerOptions" json:"normal_customer_options"`
	CreditCustomerMin     int   `mapstructure:"creditCustomerMin" json:"credit_customer_min"`
	CreditCustomerOptions []int `mapstructure:"creditCustomerOptions" json:"credit_customer_options"`
	AdminOverrideAllowed  bool  `mapstructure:"adminOverrideAllowed" json:"admin_override_allowed"`

	// MaxCreditLimit caps the limit a customer profile may carry.
	MaxCreditLimit decimal.Decimal `mapstructure:"maxCreditLimit" json:"max_credit_limit"`
}

func DefaultAdvancePolicy() AdvancePolicy {
	return AdvancePolicy{
		NormalCustomerMin:     50,
		NormalCustomerOptions: []int{50, 75, 100},
		CreditCustomerMin:     0,
		CreditCustomerOptions: []int{0, 25, 50, 75, 100},
		AdminOverrideAllowed:  true,
		MaxCreditLimit:        decimal.NewFromInt(100000),
	}
}

// AdvancePolicyHolder serves the file-backed policy defaults and hot-reloads
// them when the config file changes. Stored settings override these defaults.
type AdvancePolicyHolder struct {
	current atomic.Value // holds AdvancePolicy
}

func NewAdvancePolicyHolder() (*AdvancePolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("advance")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/glass")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultAdvancePolicy()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		if err := v.UnmarshalKey("advance", &cfg); err != nil {
			return nil, err
		}
	}
	if err := validateAdvancePolicy(cfg); err != nil {
		return nil, err
	}

	holder := &AdvancePolicyHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultAdvancePolicy()
		if err := v.UnmarshalKey("advance", &updated); err != nil {
			log.Printf("[advance-policy] reload failed: %v", err)
			return
		}
		if err := validateAdvancePolicy(updated); err != nil {
			log.Printf("[advance-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[advance-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *AdvancePolicyHolder) Get() AdvancePolicy {
	return h.current.Load().(AdvancePolicy)
}

func validateAdvancePolicy(cfg AdvancePolicy) error {
	if len(cfg.NormalCustomerOptions) == 0 {
		return errors.New("advance.normalCustomerOptions cannot be empty")
	}
	if len(cfg.CreditCustomerOptions) == 0 {
		return errors.New("advance.creditCustomerOptions cannot be empty")
	}
	for _, p := range append(append([]int{}, cfg.NormalCustomerOptions...), cfg.CreditCustomerOptions...) {
		if p < 0 || p > 100 {
			return errors.New("advance percent options must be within [0,100]")
		}
	}
	if cfg.MaxCreditLimit.IsNegative() {
		return errors.New("advance.maxCreditLimit cannot be negative")
	}
	return nil
}
