package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// memStore is a committed state; memTx works on a copy and publishes it on Commit.
type memStore struct {
	products  map[string]*catalog.Product
	lots      map[string]int
	histories map[string]History
	restored  map[string]bool
	saveErr   error
	commits   int
}

func newMemStore(products ...*catalog.Product) *memStore {
	s := &memStore{
		products:  map[string]*catalog.Product{},
		lots:      map[string]int{},
		histories: map[string]History{},
		restored:  map[string]bool{},
	}
	for _, p := range products {
		s.products[p.ID] = p
		for _, l := range p.Lots {
			s.lots[l.ID] = l.Stock
		}
	}
	return s
}

func (s *memStore) Begin(context.Context) (Tx, error) {
	return &memTx{store: s, products: map[string]*catalog.Product{}, lots: map[string]int{}}, nil
}

type memTx struct {
	store    *memStore
	products map[string]*catalog.Product
	lots     map[string]int
	history  map[string]History
	claimed  []string
	done     bool
}

func clone(p *catalog.Product) *catalog.Product {
	b, _ := json.Marshal(p)
	var c catalog.Product
	_ = json.Unmarshal(b, &c)
	return &c
}

func (t *memTx) LockProducts(_ context.Context, ids []string) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := t.store.products[id]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (t *memTx) SaveProduct(_ context.Context, p *catalog.Product) error {
	if t.store.saveErr != nil {
		return t.store.saveErr
	}
	t.products[p.ID] = p
	return nil
}

func (t *memTx) AdjustLots(_ context.Context, deltas map[string]int) error {
	for id, d := range deltas {
		t.lots[id] -= d
	}
	return nil
}

func (t *memTx) SaveHistory(_ context.Context, orderID string, h History) error {
	if _, ok := t.store.histories[orderID]; ok {
		return apperror.Conflict("inventory for order %s was already applied", orderID)
	}
	if t.history == nil {
		t.history = map[string]History{}
	}
	t.history[orderID] = h
	return nil
}

func (t *memTx) ClaimHistory(_ context.Context, orderID string) (History, bool, error) {
	h, ok := t.store.histories[orderID]
	if !ok || t.store.restored[orderID] {
		return nil, false, nil
	}
	t.claimed = append(t.claimed, orderID)
	return h, true, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("tx already closed")
	}
	t.done = true
	t.store.commits++
	for id, p := range t.products {
		t.store.products[id] = p
	}
	for id, d := range t.lots {
		t.store.lots[id] += d
	}
	for id, h := range t.history {
		t.store.histories[id] = h
	}
	for _, id := range t.claimed {
		t.store.restored[id] = true
	}
	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	return nil
}

func newTestService(store *memStore) Service {
	return NewService(store, testLedger())
}

func inventoried(id string, lots ...catalog.Lot) *catalog.Product {
	p := &catalog.Product{ID: id, Name: id, Inventoried: true, Lots: lots}
	p.Stock = p.LotStock()
	return p
}

func TestApplyDepletesAndRecordsHistory(t *testing.T) {
	store := newMemStore(inventoried("P1", lot("A", 3, 70), lot("B", 5, 80)), &catalog.Product{ID: "P2", Stock: 0})
	svc := newTestService(store)

	h, err := svc.Apply(context.Background(), "O1", []Line{
		{ProductID: "P1", Quantity: 2, SaleUnit: 100},
		{ProductID: "P2", Quantity: 1, SaleUnit: 40},
		{ProductID: "P1", Quantity: 4, SaleUnit: 100},
	})
	require.NoError(t, err)

	require.Len(t, h, 1, "untracked products are not recorded")
	assert.Equal(t, "P1", h[0].ProductID)
	assert.Equal(t, 6, h[0].Quantity)
	assert.Equal(t, 2, store.products["P1"].Stock)
	assert.Equal(t, map[string]int{"A": 0, "B": 2}, store.lots)
	assert.Equal(t, h, store.histories["O1"])
}

func TestApplyRefusesToOversell(t *testing.T) {
	store := newMemStore(inventoried("P1", lot("A", 2, 70)))
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), "O1", []Line{{ProductID: "P1", Quantity: 3, SaleUnit: 100}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeProductUnavailable))
	assert.Contains(t, err.Error(), "only 2 piece")
	assert.Equal(t, 2, store.products["P1"].Stock)
	assert.Zero(t, store.commits)

	store = newMemStore(inventoried("P1"))
	_, err = newTestService(store).Apply(context.Background(), "O1", []Line{{ProductID: "P1", Quantity: 1}})
	assert.Contains(t, err.Error(), "is out of stock")
}

func TestApplyRunsOncePerOrder(t *testing.T) {
	store := newMemStore(inventoried("P1", lot("A", 5, 70)))
	svc := newTestService(store)
	lines := []Line{{ProductID: "P1", Quantity: 1, SaleUnit: 100}}

	_, err := svc.Apply(context.Background(), "O1", lines)
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), "O1", lines)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Equal(t, 4, store.products["P1"].Stock)
}

func TestApplyWithoutTrackedProductsWritesNothing(t *testing.T) {
	store := newMemStore(&catalog.Product{ID: "P1"})
	h, err := newTestService(store).Apply(context.Background(), "O1", []Line{{ProductID: "P1", Quantity: 1}})
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Zero(t, store.commits)
	assert.NotContains(t, store.histories, "O1")
}

func TestApplyRollsBackOnSaveFailure(t *testing.T) {
	store := newMemStore(inventoried("P1", lot("A", 5, 70)))
	store.saveErr = errors.New("disk full")

	_, err := newTestService(store).Apply(context.Background(), "O1", []Line{{ProductID: "P1", Quantity: 1}})
	assert.ErrorIs(t, err, store.saveErr)
	assert.Equal(t, 5, store.products["P1"].Stock)
	assert.Zero(t, store.commits)
}

func TestRestoreIsExactlyOnce(t *testing.T) {
	store := newMemStore(inventoried("P1", lot("A", 3, 70), lot("B", 5, 80)))
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "O1", []Line{{ProductID: "P1", Quantity: 6, SaleUnit: 100}})
	require.NoError(t, err)

	ok, err := svc.Restore(ctx, "O1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8, store.products["P1"].Stock)
	assert.Equal(t, map[string]int{"A": 3, "B": 5}, store.lots)

	ok, err = svc.Restore(ctx, "O1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 8, store.products["P1"].Stock)

	ok, err = svc.Restore(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}
