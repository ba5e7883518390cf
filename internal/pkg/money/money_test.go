package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]int64{
		"2.5":   3,
		"2.49":  2,
		"-2.5":  -2,
		"0":     0,
		"99.50": 100,
	}
	for in, want := range cases {
		assert.Equal(t, want, Round(decimal.RequireFromString(in)), in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(20), Percent(200, decimal.NewFromInt(10)))
	assert.Equal(t, int64(13), Percent(125, decimal.NewFromInt(10))) // 12.5 rounds up
	assert.Equal(t, int64(19), Percent(155, decimal.RequireFromString("12.5")))
}

func TestShareIsProportional(t *testing.T) {
	assert.Equal(t, int64(67), Share(200, 300, decimal.NewFromInt(100)))
	assert.Equal(t, int64(33), Share(100, 300, decimal.NewFromInt(100)))
	assert.Equal(t, int64(0), Share(100, 0, decimal.NewFromInt(100)))
}

func TestCappedPercent(t *testing.T) {
	// net 1000 at 20% is 200, capped to 150: excess 50 is 5% of net.
	assert.Equal(t, int64(90), CappedPercent(600, decimal.NewFromInt(20), 50, 1000))
	assert.Equal(t, int64(60), CappedPercent(400, decimal.NewFromInt(20), 50, 1000))
}

func TestRate(t *testing.T) {
	assert.Equal(t, int64(10), Rate(200, decimal.RequireFromString("0.05")))
	assert.Equal(t, int64(8), Rate(150, decimal.RequireFromString("0.05"))) // 7.5
}
