package inventory

import (
	"context"
	"fmt"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// Service applies and reverses an order's inventory consumption.
type Service interface {
	// Apply depletes stock for the inventory-tracked products among lines and stores the
	// resulting history on the order. It runs once per order; a second call fails with
	// Conflict and changes nothing.
	Apply(ctx context.Context, orderID string, lines []Line) (History, error)
	// Restore returns an order's recorded consumption to stock. It reports false when
	// there was nothing to restore, including when the order was already restored.
	Restore(ctx context.Context, orderID string) (bool, error)
}

type service struct {
	repo   Repository
	ledger Ledger
}

func NewService(repo Repository, ledger Ledger) Service {
	return &service{repo: repo, ledger: ledger}
}

func (s *service) Apply(ctx context.Context, orderID string, lines []Line) (h History, err error) {
	totals := Aggregate(lines)
	ids := make([]string, len(totals))
	for i, l := range totals {
		ids[i] = l.ProductID
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	byID := make(map[string]*catalog.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	h = History{}
	for _, l := range totals {
		p, ok := byID[l.ProductID]
		if !ok || !p.Inventoried {
			continue
		}
		if p.Stock < l.Quantity {
			if p.Stock <= 0 {
				return nil, apperror.ProductUnavailable("%s is out of stock!", p.Name)
			}
			return nil, apperror.ProductUnavailable("%s only %d piece available in stock!", p.Name, p.Stock)
		}
		h = append(h, s.ledger.Deplete(p, l.Quantity, l.SaleUnit))
		if err = tx.SaveProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("save product %s: %w", p.ID, err)
		}
	}
	if len(h) == 0 {
		tx.Rollback()
		return nil, nil
	}

	if err = tx.AdjustLots(ctx, h.LotDeltas()); err != nil {
		return nil, fmt.Errorf("adjust inventory lots: %w", err)
	}
	if err = tx.SaveHistory(ctx, orderID, h); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit inventory: %w", err)
	}
	return h, nil
}

func (s *service) Restore(ctx context.Context, orderID string) (restored bool, err error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !restored {
			tx.Rollback()
		}
	}()

	h, ok, err := tx.ClaimHistory(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("claim inventory history: %w", err)
	}
	if !ok || len(h) == 0 {
		return false, nil
	}

	ids := make([]string, len(h))
	for i, r := range h {
		ids[i] = r.ProductID
	}
	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("lock products: %w", err)
	}
	byID := make(map[string]*catalog.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	deltas := map[string]int{}
	for _, r := range h {
		p, ok := byID[r.ProductID]
		if !ok {
			continue
		}
		s.ledger.Restore(p, r)
		if err = tx.SaveProduct(ctx, p); err != nil {
			return false, fmt.Errorf("save product %s: %w", p.ID, err)
		}
		for _, t := range r.Taken {
			deltas[t.LotID] -= t.Quantity
		}
	}
	if err = tx.AdjustLots(ctx, deltas); err != nil {
		return false, fmt.Errorf("adjust inventory lots: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit inventory restore: %w", err)
	}
	return true, nil
}
