package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceSource fetches the current USD price of one unit of the tracked asset
type PriceSource interface {
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}
