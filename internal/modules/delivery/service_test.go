package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/hours"
)

type memRepo struct {
	charges map[string]int64
	lookups int
	err     error
}

func newMemRepo() *memRepo { return &memRepo{charges: map[string]int64{}} }

func (m *memRepo) FindCharge(_ context.Context, hubID, area string) (int64, bool, error) {
	m.lookups++
	if m.err != nil {
		return 0, false, m.err
	}
	c, ok := m.charges[hubID+"/"+area]
	return c, ok, nil
}

func (m *memRepo) Upsert(_ context.Context, a *HubArea) error {
	m.charges[a.HubID+"/"+a.Area] = a.DeliveryCharge
	return nil
}

func (m *memRepo) ListByHub(_ context.Context, hubID string) ([]*HubArea, error) {
	return nil, nil
}

func testService(repo Repository, hour int) *service {
	svc := NewService(repo, Options{
		LateNightAreas:     []string{"bashundhara", "bashundhara r/a"},
		LateNightHours:     hours.Window{23, 6},
		ExpressRestaurants: []string{"R-express"},
		ExpressAreas:       []string{"gulshan", "banani"},
		ExpressMinutes:     20,
	}).(*service)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, hour, 15, 0, 0, time.UTC) }
	return svc
}

func TestChargeLooksUpNormalizedArea(t *testing.T) {
	repo := newMemRepo()
	repo.charges["h1/gulshan"] = 60
	svc := testService(repo, 14)

	charge, err := svc.Charge(context.Background(), "h1", "  Gulshan ")
	require.NoError(t, err)
	assert.Equal(t, int64(60), charge)
}

func TestChargeAreaNotServiced(t *testing.T) {
	repo := newMemRepo()
	repo.charges["h1/mirpur"] = 0
	svc := testService(repo, 14)

	_, err := svc.Charge(context.Background(), "h1", "mirpur")
	assert.True(t, apperror.HasCode(err, apperror.CodeAreaNotServiced))

	_, err = svc.Charge(context.Background(), "h1", "uttara")
	assert.True(t, apperror.HasCode(err, apperror.CodeAreaNotServiced))
}

func TestChargeLateNightCutoff(t *testing.T) {
	repo := newMemRepo()
	repo.charges["h1/bashundhara"] = 80

	_, err := testService(repo, 23).Charge(context.Background(), "h1", "Bashundhara")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAreaNotServiced))
	assert.Contains(t, err.Error(), "before 11 PM")

	charge, err := testService(repo, 21).Charge(context.Background(), "h1", "bashundhara")
	require.NoError(t, err)
	assert.Equal(t, int64(80), charge)
}

func TestChargeWrapsRepositoryErrors(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("connection refused")

	_, err := testService(repo, 14).Charge(context.Background(), "h1", "gulshan")
	require.Error(t, err)
	assert.False(t, apperror.HasCode(err, apperror.CodeAreaNotServiced))
	assert.ErrorIs(t, err, repo.err)
}

func TestEstimatedTime(t *testing.T) {
	svc := testService(newMemRepo(), 14)

	assert.Equal(t, 20, svc.EstimatedTime([]string{"R-express"}, "Gulshan", 100))
	assert.Equal(t, 67, svc.EstimatedTime([]string{"R-express", "R2"}, "gulshan", 100))
	assert.Equal(t, 67, svc.EstimatedTime([]string{"R2"}, "gulshan", 100))
	assert.Equal(t, 30, svc.EstimatedTime([]string{"R2"}, "mirpur", 40))
	// 0.67 * 75 = 50.25
	assert.Equal(t, 50, svc.EstimatedTime(nil, "mirpur", 75))
}

func TestSetChargeValidates(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, 14)

	a, err := svc.SetCharge(context.Background(), HubArea{HubID: "h1", Area: "Banani", DeliveryCharge: 50})
	require.NoError(t, err)
	assert.Equal(t, "banani", a.Area)
	assert.Equal(t, int64(50), repo.charges["h1/banani"])

	_, err = svc.SetCharge(context.Background(), HubArea{HubID: "h1", Area: "x", DeliveryCharge: -1})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
