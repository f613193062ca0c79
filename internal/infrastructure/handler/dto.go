package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/cache"
)

// PriceResponse represents the current state of the price feed
type PriceResponse struct {
	BTCPrice    *string `json:"btc_price"`
	IsLoading   bool    `json:"is_loading"`
	Error       string  `json:"error,omitempty"`
	LastUpdated *string `json:"last_updated"`
	Status      string  `json:"status"`
}

// ConvertResponse represents the response for the conversion endpoint
type ConvertResponse struct {
	USDAmount string  `json:"usd_amount"`
	BTCAmount string  `json:"btc_amount"`
	Available bool    `json:"available"`
	BTCPrice  *string `json:"btc_price"`
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status     string `json:"status"`
	FeedStatus string `json:"feed_status"`
}

// PaymentDetailsResponse tells the storefront where to send payments
type PaymentDetailsResponse struct {
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
	Asset         string `json:"asset"`
}

// CreateQuoteRequest represents the request body for creating a payment quote
type CreateQuoteRequest struct {
	OrderID   string          `json:"order_id"`
	USDAmount decimal.Decimal `json:"usd_amount"`
}

// QuoteResponse represents a stored payment quote
type QuoteResponse struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	USDAmount     string `json:"usd_amount"`
	BTCAmount     string `json:"btc_amount"`
	BTCPrice      string `json:"btc_price"`
	RateFetchedAt string `json:"rate_fetched_at"`
	WalletAddress string `json:"wallet_address"`
	CreatedAt     string `json:"created_at"`
}

// QuoteListResponse represents the quotes issued for one order
type QuoteListResponse struct {
	OrderID string          `json:"order_id"`
	Quotes  []QuoteResponse `json:"quotes"`
}

func newPriceResponse(state entity.PriceState) PriceResponse {
	resp := PriceResponse{
		IsLoading: state.IsLoading,
		Error:     state.Error,
		Status:    string(state.Status),
	}
	if state.BTCPrice != nil {
		price := state.BTCPrice.String()
		resp.BTCPrice = &price
	}
	if state.LastUpdated != nil {
		updated := state.LastUpdated.UTC().Format(time.RFC3339)
		resp.LastUpdated = &updated
	}
	return resp
}

// newConvertResponse prices amount with the same snapshot it reports
func newConvertResponse(snapshot entity.RateSnapshot, amount decimal.Decimal) ConvertResponse {
	btcAmount := cache.FormatConversion(snapshot, amount)

	resp := ConvertResponse{
		USDAmount: amount.String(),
		BTCAmount: btcAmount,
		Available: btcAmount != cache.Sentinel,
	}
	if resp.Available {
		price := snapshot.Price.String()
		resp.BTCPrice = &price
	}
	return resp
}

func newQuoteResponse(q *entity.PaymentQuote) QuoteResponse {
	return QuoteResponse{
		ID:            q.ID,
		OrderID:       q.OrderID,
		USDAmount:     q.USDAmount.StringFixed(2),
		BTCAmount:     q.BTCAmount,
		BTCPrice:      q.BTCPrice.String(),
		RateFetchedAt: q.RateFetchedAt.UTC().Format(time.RFC3339),
		WalletAddress: q.WalletAddress,
		CreatedAt:     q.CreatedAt.UTC().Format(time.RFC3339),
	}
}
