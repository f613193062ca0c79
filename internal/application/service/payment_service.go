// Package service internal/application/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/repository"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/cache"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/middleware"
)

var (
	// ErrInvalidQuote wraps quote validation failures
	ErrInvalidQuote = errors.New("invalid payment quote")
	// ErrRateUnavailable is returned when no BTC price has been fetched yet
	ErrRateUnavailable = errors.New("no exchange rate available")
)

// RateProvider exposes the current rate snapshot
type RateProvider interface {
	Snapshot() entity.RateSnapshot
}

// PaymentService prices storefront orders in BTC and keeps the issued quotes
type PaymentService struct {
	repo    repository.PaymentQuoteRepository
	rates   RateProvider
	details entity.PaymentDetails
	logger  logger.Logger
	now     func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(repo repository.PaymentQuoteRepository, rates RateProvider, details entity.PaymentDetails, log logger.Logger) *PaymentService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PaymentService{
		repo:    repo,
		rates:   rates,
		details: details,
		logger:  log,
		now:     time.Now,
	}
}

// PaymentDetails returns where customers send payments
func (s *PaymentService) PaymentDetails() entity.PaymentDetails {
	return s.details
}

// CreateQuote converts an order total into BTC at the cached rate and stores the quote
func (s *PaymentService) CreateQuote(ctx context.Context, orderID string, usdAmount decimal.Decimal) (*entity.PaymentQuote, error) {
	requestID := middleware.GetRequestID(ctx)

	quote := &entity.PaymentQuote{
		ID:            uuid.New().String(),
		OrderID:       orderID,
		USDAmount:     usdAmount.Round(2),
		WalletAddress: s.details.WalletAddress,
		CreatedAt:     s.now().UTC(),
	}

	if err := quote.Validate(); err != nil {
		s.logger.Warn("Payment quote validation failed", map[string]interface{}{
			"request_id": requestID,
			"order_id":   orderID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}

	snapshot := s.rates.Snapshot()
	btcAmount := cache.FormatConversion(snapshot, quote.USDAmount)
	if btcAmount == cache.Sentinel {
		s.logger.Warn("No BTC price available for quote", map[string]interface{}{
			"request_id": requestID,
			"order_id":   orderID,
		})
		return nil, ErrRateUnavailable
	}

	quote.BTCAmount = btcAmount
	quote.BTCPrice = *snapshot.Price
	quote.RateFetchedAt = *snapshot.FetchedAt

	if _, err := s.repo.Store(ctx, quote); err != nil {
		s.logger.Error("Failed to store payment quote", map[string]interface{}{
			"request_id": requestID,
			"order_id":   orderID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to store payment quote: %w", err)
	}

	s.logger.Info("Payment quote created", map[string]interface{}{
		"request_id": requestID,
		"id":         quote.ID,
		"order_id":   orderID,
		"usd_amount": quote.USDAmount.StringFixed(2),
		"btc_amount": quote.BTCAmount,
		"btc_price":  quote.BTCPrice.String(),
	})

	return quote, nil
}

// GetQuote retrieves a quote by ID
func (s *PaymentService) GetQuote(ctx context.Context, id string) (*entity.PaymentQuote, error) {
	return s.repo.FindByID(ctx, id)
}

// ListQuotes returns every quote issued for an order
func (s *PaymentService) ListQuotes(ctx context.Context, orderID string) ([]*entity.PaymentQuote, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidQuote)
	}
	return s.repo.FindByOrderID(ctx, orderID)
}
