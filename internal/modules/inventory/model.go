package inventory

import "github.com/shopspring/decimal"

// Line is one ordered product as the ledger sees it.
type Line struct {
	ProductID string
	Quantity  int
	// SaleUnit is the price the unit sold for, used to compute the realized margin.
	SaleUnit int64
}

// Taken records units consumed from one lot.
type Taken struct {
	LotID     string          `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Record is a product's share of an order's inventory history.
type Record struct {
	ProductID string `json:"id"`
	// Amount is the realized margin: consumed units times (sale unit - lot unit cost).
	Amount decimal.Decimal `json:"amount"`
	// Quantity is the number of units drawn from lots.
	Quantity int `json:"quantity"`
	// Ordered is the number of units the product's stock counter was lowered by.
	Ordered int     `json:"ordered"`
	Taken   []Taken `json:"takenRecords"`
}

// History is the immutable inventory snapshot stored on an order.
type History []Record

// LotDeltas sums consumed quantities per lot across all records.
func (h History) LotDeltas() map[string]int {
	deltas := map[string]int{}
	for _, r := range h {
		for _, t := range r.Taken {
			deltas[t.LotID] += t.Quantity
		}
	}
	return deltas
}
