package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBetweenWraparound(t *testing.T) {
	assert.True(t, Between(20, 6, 23, 0))
	assert.True(t, Between(20, 6, 2, 15))
	assert.True(t, Between(20, 6, 6, 0))
	assert.False(t, Between(20, 6, 10, 0))
	assert.False(t, Between(20, 6, 19, 59))
}

func TestBetweenSameDay(t *testing.T) {
	assert.False(t, Between(9, 17, 8, 0))
	assert.True(t, Between(9, 17, 9, 0))
	assert.True(t, Between(9, 17, 16, 59))
	assert.False(t, Between(9, 17, 17, 30))
}

func TestBetweenDegenerateWindow(t *testing.T) {
	assert.True(t, Between(12, 12, 12, 0))
	assert.False(t, Between(12, 12, 13, 0))
}

func TestWindowContains(t *testing.T) {
	w := Window{23, 6}
	assert.True(t, w.Contains(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
}
