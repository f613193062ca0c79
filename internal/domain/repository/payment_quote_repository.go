// Package repository internal/domain/repository/payment_quote_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
)

// ErrQuoteNotFound is returned when no quote exists for an ID
var ErrQuoteNotFound = errors.New("payment quote not found")

// PaymentQuoteRepository defines the interface for payment quote storage
type PaymentQuoteRepository interface {
	// Store saves a quote and returns its ID
	Store(ctx context.Context, quote *entity.PaymentQuote) (string, error)

	// FindByID retrieves a quote by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.PaymentQuote, error)

	// FindByOrderID lists the quotes issued for a storefront order, oldest first
	FindByOrderID(ctx context.Context, orderID string) ([]*entity.PaymentQuote, error)
}
