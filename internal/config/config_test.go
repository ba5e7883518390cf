package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

func TestParsePricingOverridesDefaults(t *testing.T) {
	p, err := ParsePricing([]byte(`
service_charge_rate: 0.1
platform_hours: [10, 22]
max_order_value: 8000
lot_retention: 24h
late_night_cutoff:
  areas: [uttara]
  hours: [22, 5]
express_delivery:
  areas: [gulshan]
  minutes: 15
`))
	require.NoError(t, err)

	assert.Equal(t, "0.1", p.ServiceChargeRate.String())
	assert.Equal(t, hours.Window{10, 22}, p.PlatformHours)
	assert.Equal(t, hours.Window{20, 6}, p.DefaultRestaurantHours)
	assert.Equal(t, int64(8000), p.MaxOrderValue)
	assert.Equal(t, 24*time.Hour, p.LotRetention)
	assert.Equal(t, []string{"uttara"}, p.LateNightAreas)
	assert.Equal(t, hours.Window{22, 5}, p.LateNightHours)
	assert.Equal(t, 15, p.ExpressMinutes)
	assert.Equal(t, 9, p.PromoReferenceHour)
}

func TestParsePricingRejectsBadWindow(t *testing.T) {
	_, err := ParsePricing([]byte(`platform_hours: [20]`))
	assert.ErrorContains(t, err, "platform_hours")

	_, err = ParsePricing([]byte(`platform_hours: [20, 30]`))
	assert.ErrorContains(t, err, "0-24")
}

func TestLoadPricingMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPricing(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPricing(), p)
}

func TestLoadPricingShippedFile(t *testing.T) {
	p, err := LoadPricing(filepath.Join("..", "..", "config", "pricing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), p.MaxOrderValue)
	assert.Contains(t, p.LateNightAreas, "bashundhara")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/dishpatch?sslmode=disable")
	t.Setenv("APP_PORT", "9090")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "Asia/Dhaka", cfg.Location.String())
}
