package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeedStatus is the position of the price feed in its refresh cycle
type FeedStatus string

const (
	// StatusIdle means no refresh has been attempted yet
	StatusIdle FeedStatus = "idle"
	// StatusLoading means at least one refresh is in flight
	StatusLoading FeedStatus = "loading"
	// StatusReady means the last settled refresh succeeded
	StatusReady FeedStatus = "ready"
	// StatusErrored means the last settled refresh failed
	StatusErrored FeedStatus = "errored"
)

// PriceState is what consumers of the price feed observe
type PriceState struct {
	BTCPrice    *decimal.Decimal `json:"btc_price"`
	IsLoading   bool             `json:"is_loading"`
	Error       string           `json:"error,omitempty"`
	LastUpdated *time.Time       `json:"last_updated"`
	Status      FeedStatus       `json:"status"`
}
