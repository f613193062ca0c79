package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxOrderIDLength bounds the storefront order reference carried on a quote
const MaxOrderIDLength = 64

// PaymentDetails describes where customers send crypto payments
type PaymentDetails struct {
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
	Asset         string `json:"asset"`
}

// PaymentQuote is a USD order total priced in BTC at a specific rate
type PaymentQuote struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	USDAmount     decimal.Decimal `json:"usd_amount"`
	BTCAmount     string          `json:"btc_amount"`
	BTCPrice      decimal.Decimal `json:"btc_price"`
	RateFetchedAt time.Time       `json:"rate_fetched_at"`
	WalletAddress string          `json:"wallet_address"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate ensures the quote meets all requirements
func (q *PaymentQuote) Validate() error {
	if q.OrderID == "" {
		return errors.New("order id is required")
	}

	if len(q.OrderID) > MaxOrderIDLength {
		return errors.New("order id must not exceed 64 characters")
	}

	if strings.ContainsAny(q.OrderID, ": ") {
		return errors.New("order id must not contain colons or spaces")
	}

	if !q.USDAmount.IsPositive() {
		return errors.New("amount must be a positive value")
	}

	return nil
}
