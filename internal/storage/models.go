package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk date format for observations.
const DateLayout = "2006-01-02"

// Observation is one recorded (product, site, date, price) fact.
// Immutable once appended to a table.
type Observation struct {
	ProductID   string
	ProductName string
	Site        string
	Date        time.Time
	Price       decimal.Decimal
}

// Table is the append-only collection of all observations ever recorded,
// ordered by append time. Owned exclusively by the Store; callers go
// through Append and never mutate rows directly.
type Table struct {
	rows []Observation
}

// NewTable returns an empty history table.
func NewTable() *Table {
	return &Table{}
}

// Len reports the number of observations.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the observations in append order.
func (t *Table) Rows() []Observation {
	out := make([]Observation, len(t.rows))
	copy(out, t.rows)
	return out
}

// Append returns a new table with obs added. The receiver is left
// untouched so callers can keep a pre-append snapshot.
func (t *Table) Append(obs Observation) *Table {
	rows := make([]Observation, len(t.rows), len(t.rows)+1)
	copy(rows, t.rows)
	return &Table{rows: append(rows, obs)}
}

// LatestPrior returns the price of the most recent observation for
// productID, or false when none exist. On duplicate max dates the last
// row in table order wins.
func (t *Table) LatestPrior(productID string) (decimal.Decimal, bool) {
	var (
		best  decimal.Decimal
		date  time.Time
		found bool
	)
	for _, obs := range t.rows {
		if obs.ProductID != productID {
			continue
		}
		if !found || !obs.Date.Before(date) {
			best = obs.Price
			date = obs.Date
			found = true
		}
	}
	return best, found
}
