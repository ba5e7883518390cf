package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

// Config is the process configuration: connection settings from the environment and the
// pricing policy from a YAML file.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	AMQPURL     string
	Location    *time.Location
	Pricing     Pricing
}

// Pricing is the platform-wide policy the pricing pipeline runs under.
type Pricing struct {
	ServiceChargeRate      decimal.Decimal
	PlatformHours          hours.Window
	DefaultRestaurantHours hours.Window
	MaxOrderValue          int64
	LotRetention           time.Duration
	PromoReferenceHour     int
	LateNightAreas         []string
	LateNightHours         hours.Window
	ExpressRestaurants     []string
	ExpressAreas           []string
	ExpressMinutes         int
	DeliveryCacheTTL       time.Duration
}

type pricingFile struct {
	ServiceChargeRate      float64       `yaml:"service_charge_rate"`
	PlatformHours          []int         `yaml:"platform_hours"`
	DefaultRestaurantHours []int         `yaml:"default_restaurant_hours"`
	MaxOrderValue          int64         `yaml:"max_order_value"`
	LotRetention           time.Duration `yaml:"lot_retention"`
	PromoReferenceHour     int           `yaml:"promo_reference_hour"`
	LateNight              struct {
		Areas []string `yaml:"areas"`
		Hours []int    `yaml:"hours"`
	} `yaml:"late_night_cutoff"`
	Express struct {
		Restaurants []string `yaml:"restaurants"`
		Areas       []string `yaml:"areas"`
		Minutes     int      `yaml:"minutes"`
	} `yaml:"express_delivery"`
	DeliveryCacheTTL time.Duration `yaml:"delivery_cache_ttl"`
}

// DefaultPricing mirrors config/pricing.yaml.
func DefaultPricing() Pricing {
	return Pricing{
		ServiceChargeRate:      decimal.RequireFromString("0.05"),
		PlatformHours:          hours.Window{20, 6},
		DefaultRestaurantHours: hours.Window{20, 6},
		MaxOrderValue:          5000,
		LotRetention:           72 * time.Hour,
		PromoReferenceHour:     9,
		LateNightHours:         hours.Window{23, 6},
		ExpressMinutes:         20,
		DeliveryCacheTTL:       10 * time.Minute,
	}
}

// Load reads .env (if present) and the environment, then the pricing policy named by
// PRICING_CONFIG. A missing policy file falls back to DefaultPricing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	loc, err := time.LoadLocation(getEnv("TZ_LOCATION", "Asia/Dhaka"))
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	cfg.Location = loc

	cfg.Pricing, err = LoadPricing(getEnv("PRICING_CONFIG", "config/pricing.yaml"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPricing parses the YAML policy at path over the defaults.
func LoadPricing(path string) (Pricing, error) {
	p := DefaultPricing()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read pricing config: %w", err)
	}
	return ParsePricing(data)
}

// ParsePricing decodes a YAML policy document; absent keys keep their defaults.
func ParsePricing(data []byte) (Pricing, error) {
	p := DefaultPricing()
	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p, fmt.Errorf("parse pricing config: %w", err)
	}

	if f.ServiceChargeRate > 0 {
		p.ServiceChargeRate = decimal.NewFromFloat(f.ServiceChargeRate)
	}
	var err error
	if p.PlatformHours, err = window("platform_hours", f.PlatformHours, p.PlatformHours); err != nil {
		return p, err
	}
	if p.DefaultRestaurantHours, err = window("default_restaurant_hours", f.DefaultRestaurantHours, p.DefaultRestaurantHours); err != nil {
		return p, err
	}
	if p.LateNightHours, err = window("late_night_cutoff.hours", f.LateNight.Hours, p.LateNightHours); err != nil {
		return p, err
	}
	if f.MaxOrderValue != 0 {
		p.MaxOrderValue = f.MaxOrderValue
	}
	if f.LotRetention > 0 {
		p.LotRetention = f.LotRetention
	}
	if f.PromoReferenceHour > 0 {
		p.PromoReferenceHour = f.PromoReferenceHour
	}
	if f.Express.Minutes > 0 {
		p.ExpressMinutes = f.Express.Minutes
	}
	if f.DeliveryCacheTTL > 0 {
		p.DeliveryCacheTTL = f.DeliveryCacheTTL
	}
	p.LateNightAreas = f.LateNight.Areas
	p.ExpressRestaurants = f.Express.Restaurants
	p.ExpressAreas = f.Express.Areas
	return p, nil
}

func window(key string, v []int, def hours.Window) (hours.Window, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 2:
		if v[0] < 0 || v[0] > 24 || v[1] < 0 || v[1] > 24 {
			return def, fmt.Errorf("%s: hours must be within 0-24, got %v", key, v)
		}
		return hours.Window{v[0], v[1]}, nil
	default:
		return def, fmt.Errorf("%s: expected [start, end], got %v", key, v)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
