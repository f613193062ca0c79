package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is the most recent USD price of one unit of the tracked asset.
// Both fields stay nil until the first successful fetch.
type RateSnapshot struct {
	Price     *decimal.Decimal `json:"price,omitempty"`
	FetchedAt *time.Time       `json:"fetched_at,omitempty"`
}

// NewRateSnapshot creates a snapshot for a price fetched at the given time
func NewRateSnapshot(price decimal.Decimal, fetchedAt time.Time) RateSnapshot {
	return RateSnapshot{
		Price:     &price,
		FetchedAt: &fetchedAt,
	}
}

// HasPrice reports whether the snapshot holds a price that can be divided by
func (s RateSnapshot) HasPrice() bool {
	return s.Price != nil && s.Price.IsPositive()
}
