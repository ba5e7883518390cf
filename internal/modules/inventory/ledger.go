package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/dishpatch-backend/internal/modules/catalog"
)

// DefaultRetention is how long an exhausted lot is kept before eviction.
const DefaultRetention = 72 * time.Hour

// Ledger applies depletions and restorations to a product's lot list in memory.
type Ledger struct {
	Retention time.Duration
	Now       func() time.Time
}

func NewLedger(retention time.Duration) Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return Ledger{Retention: retention, Now: time.Now}
}

// Aggregate sums quantities per product, keeping first-seen order. The sale unit of the
// last line for a product wins.
func Aggregate(lines []Line) []Line {
	idx := map[string]int{}
	var out []Line
	for _, l := range lines {
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			out[i].SaleUnit = l.SaleUnit
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// Deplete lowers p's stock by qty and consumes lots oldest first, stamping lots that run
// out. Lots exhausted longer than the retention window are then dropped from the list.
func (l Ledger) Deplete(p *catalog.Product, qty int, saleUnit int64) Record {
	now := l.Now().UTC()
	rec := Record{ProductID: p.ID, Amount: decimal.Zero, Ordered: qty, Taken: []Taken{}}
	p.Stock -= qty

	sale := decimal.NewFromInt(saleUnit)
	remaining := qty
	for i := range p.Lots {
		lot := &p.Lots[i]
		if remaining <= 0 {
			break
		}
		if lot.Stock <= 0 {
			continue
		}
		n := min(lot.Stock, remaining)
		lot.Stock -= n
		remaining -= n

		rec.Quantity += n
		rec.Amount = rec.Amount.Add(sale.Sub(lot.UnitPrice).Mul(decimal.NewFromInt(int64(n))))
		rec.Taken = append(rec.Taken, Taken{LotID: lot.ID, Quantity: n, UnitPrice: lot.UnitPrice})
		if lot.Stock == 0 {
			stamp := now
			lot.StockOutAt = &stamp
		}
	}

	p.Lots = l.evict(p.Lots, now)
	return rec
}

func (l Ledger) evict(lots []catalog.Lot, now time.Time) []catalog.Lot {
	kept := lots[:0]
	for _, lot := range lots {
		if lot.Stock == 0 && lot.StockOutAt != nil && now.Sub(*lot.StockOutAt) > l.Retention {
			continue
		}
		kept = append(kept, lot)
	}
	return kept
}

// Restore puts a record's consumption back: each taken quantity returns to its lot, and a
// lot that has since been evicted is recreated at the head of the list so consumption
// order is preserved.
func (l Ledger) Restore(p *catalog.Product, rec Record) {
	p.Stock += rec.Ordered
	for i := len(rec.Taken) - 1; i >= 0; i-- {
		t := rec.Taken[i]
		if lot := findLot(p.Lots, t.LotID); lot != nil {
			lot.Stock += t.Quantity
			lot.StockOutAt = nil
			continue
		}
		revived := catalog.Lot{
			ID:        t.LotID,
			Stock:     t.Quantity,
			Quantity:  t.Quantity,
			UnitPrice: t.UnitPrice,
			CreatedAt: l.Now().UTC(),
		}
		p.Lots = append([]catalog.Lot{revived}, p.Lots...)
	}
}

func findLot(lots []catalog.Lot, id string) *catalog.Lot {
	for i := range lots {
		if lots[i].ID == id {
			return &lots[i]
		}
	}
	return nil
}
