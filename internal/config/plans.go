package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Plan names recognized across the service.
const (
	PlanFree    = "free"
	PlanBeta    = "beta"
	PlanBasic   = "basic"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

// PlanEntry describes one subscription tier: the credit allotment granted on
// activation or renewal, and the billing processor price used at checkout.
type PlanEntry struct {
	Credits int64  `mapstructure:"credits" json:"credits"`
	PriceID string `mapstructure:"priceId" json:"price_id,omitempty"`
}

// PlanConfig maps plan name to its entry.
type PlanConfig struct {
	Plans map[string]PlanEntry `mapstructure:"plans"`
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Plans: map[string]PlanEntry{
			PlanFree:    {Credits: 5},
			PlanBeta:    {Credits: 50},
			PlanBasic:   {Credits: 100, PriceID: "price_basic"},
			PlanPro:     {Credits: 300, PriceID: "price_pro"},
			PlanPremium: {Credits: 1000, PriceID: "price_premium"},
		},
	}
}

// PlanConfigHolder serves the current plan table and swaps it atomically on
// config file changes.
type PlanConfigHolder struct {
	current atomic.Value // holds PlanConfig
}

func NewPlanConfigHolder() (*PlanConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/lexora/config")
	v.AddConfigPath("/etc/lexora")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEXORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlanConfig()
		v.SetDefault("plans", defaults.Plans)
	}

	var cfg PlanConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Plans) == 0 {
		cfg = DefaultPlanConfig()
	}
	if err := validatePlanConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlanConfig
		if err := v.Unmarshal(&updated); err != nil {
			log.Printf("[plan-config] reload failed: %v", err)
			return
		}
		if err := validatePlanConfig(updated); err != nil {
			log.Printf("[plan-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[plan-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlanConfigHolder returns a holder pinned to the given table. Used
// by tests and by callers that do not want file watching.
func NewStaticPlanConfigHolder(cfg PlanConfig) *PlanConfigHolder {
	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlanConfigHolder) Get() PlanConfig {
	return h.current.Load().(PlanConfig)
}

// Allotment returns the credit allotment for a plan name.
func (h *PlanConfigHolder) Allotment(plan string) (int64, bool) {
	entry, ok := h.Get().Plans[strings.ToLower(strings.TrimSpace(plan))]
	if !ok {
		return 0, false
	}
	return entry.Credits, true
}

// PriceID returns the billing processor price for a plan name.
func (h *PlanConfigHolder) PriceID(plan string) (string, bool) {
	entry, ok := h.Get().Plans[strings.ToLower(strings.TrimSpace(plan))]
	if !ok || strings.TrimSpace(entry.PriceID) == "" {
		return "", false
	}
	return entry.PriceID, true
}

func validatePlanConfig(cfg PlanConfig) error {
	if len(cfg.Plans) == 0 {
		return errors.New("plans cannot be empty")
	}
	if _, ok := cfg.Plans[PlanFree]; !ok {
		return errors.New("plans must define the free tier")
	}
	for name, entry := range cfg.Plans {
		if entry.Credits < 0 {
			return errors.New("plan " + name + " has a negative allotment")
		}
	}
	return nil
}
