package config

import (
	"log"
	"os"
	"strconv"

	"github.com/Simplici0/price-ranger/internal/pricing"
)

const (
	defaultDBPath = "./dev.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
	defaultStore  = "sqlite"
)

// Config holds application configuration sourced from environment variables
// and the optional pricing file.
type Config struct {
	Env         string
	DBPath      string
	Port        string
	Store       string
	PricingFile string
	DemoBoard   bool
	Pricing     Pricing
}

// Pricing holds the tunable pricing defaults.
type Pricing struct {
	MinMarginPercent  float64
	DefaultAPR        float64
	DefaultTermMonths int
	Financing         []pricing.FinancingOption
}

// DefaultFinancing is the plan used when nothing else is configured.
func (p Pricing) DefaultFinancing() pricing.FinancingOption {
	return pricing.FinancingOption{Name: "Standard", APR: p.DefaultAPR, TermMonths: p.DefaultTermMonths}
}

func defaultPricing() Pricing {
	return Pricing{
		MinMarginPercent:  pricing.MinMarginPercent,
		DefaultAPR:        pricing.DefaultAPR,
		DefaultTermMonths: pricing.DefaultTermMonths,
		Financing: []pricing.FinancingOption{
			{Name: "Standard", APR: pricing.DefaultAPR, TermMonths: pricing.DefaultTermMonths},
			{Name: "Same as cash", APR: 0, TermMonths: 12},
			{Name: "Extended", APR: 9.99, TermMonths: 120},
		},
	}
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == defaultEnv
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		Env:         os.Getenv("APP_ENV"),
		DBPath:      os.Getenv("DB_PATH"),
		Port:        os.Getenv("PORT"),
		Store:       os.Getenv("STORE"),
		PricingFile: os.Getenv("PRICING_FILE"),
		DemoBoard:   os.Getenv("DEMO_BOARD") == "1",
		Pricing:     defaultPricing(),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.Store == "" {
		cfg.Store = defaultStore
	}

	if cfg.PricingFile != "" {
		p, err := loadPricingFile(cfg.PricingFile, cfg.Pricing)
		if err != nil {
			log.Printf("warning: ignoring pricing file: %v", err)
		} else {
			cfg.Pricing = p
		}
	}

	cfg.Pricing.MinMarginPercent = envFloat("MIN_MARGIN_PERCENT", cfg.Pricing.MinMarginPercent)
	cfg.Pricing.DefaultAPR = envFloat("DEFAULT_APR", cfg.Pricing.DefaultAPR)
	cfg.Pricing.DefaultTermMonths = int(envFloat("DEFAULT_TERM_MONTHS", float64(cfg.Pricing.DefaultTermMonths)))

	if cfg.Pricing.MinMarginPercent < 0 || cfg.Pricing.MinMarginPercent >= 100 {
		log.Printf("warning: MIN_MARGIN_PERCENT %v out of range, using %v", cfg.Pricing.MinMarginPercent, pricing.MinMarginPercent)
		cfg.Pricing.MinMarginPercent = pricing.MinMarginPercent
	}
	if cfg.Pricing.DefaultTermMonths <= 0 {
		cfg.Pricing.DefaultTermMonths = pricing.DefaultTermMonths
	}

	return cfg
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not numeric, using %v", key, raw, fallback)
		return fallback
	}
	return v
}
