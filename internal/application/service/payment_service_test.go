package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/repository"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/mocks"
)

// staticRates serves a fixed snapshot
type staticRates struct {
	snapshot entity.RateSnapshot
}

func (r staticRates) Snapshot() entity.RateSnapshot { return r.snapshot }

var details = entity.PaymentDetails{
	WalletAddress: "bc1qexampleaddress",
	Network:       "bitcoin",
	Asset:         "BTC",
}

func TestCreateQuote(t *testing.T) {
	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rates := staticRates{entity.NewRateSnapshot(decimal.NewFromInt(50000), fetchedAt)}
	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	ctx := context.Background()

	t.Run("Successful quote", func(t *testing.T) {
		repo := new(mocks.MockPaymentQuoteRepository)
		svc := NewPaymentService(repo, rates, details, log)

		repo.On("Store", ctx, mock.MatchedBy(func(q *entity.PaymentQuote) bool {
			return q.OrderID == "order-1" && q.BTCAmount == "0.00200000"
		})).Return("ignored", nil).Once()

		quote, err := svc.CreateQuote(ctx, "order-1", decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.NotEmpty(t, quote.ID)
		assert.Equal(t, "0.00200000", quote.BTCAmount)
		assert.True(t, decimal.NewFromInt(50000).Equal(quote.BTCPrice))
		assert.Equal(t, fetchedAt, quote.RateFetchedAt)
		assert.Equal(t, details.WalletAddress, quote.WalletAddress)
		assert.False(t, quote.CreatedAt.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("Amount rounded to cents", func(t *testing.T) {
		repo := new(mocks.MockPaymentQuoteRepository)
		svc := NewPaymentService(repo, rates, details, log)
		repo.On("Store", ctx, mock.Anything).Return("id", nil).Once()

		quote, err := svc.CreateQuote(ctx, "order-2", decimal.RequireFromString("99.999"))

		require.NoError(t, err)
		assert.Equal(t, "100.00", quote.USDAmount.StringFixed(2))
		assert.Equal(t, "0.00200000", quote.BTCAmount)
	})

	t.Run("Invalid amount", func(t *testing.T) {
		repo := new(mocks.MockPaymentQuoteRepository)
		svc := NewPaymentService(repo, rates, details, log)

		quote, err := svc.CreateQuote(ctx, "order-3", decimal.RequireFromString("0.004"))

		assert.Nil(t, quote)
		assert.True(t, errors.Is(err, ErrInvalidQuote))
		assert.Contains(t, err.Error(), "amount must be a positive value")
		repo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})

	t.Run("Missing order id", func(t *testing.T) {
		svc := NewPaymentService(new(mocks.MockPaymentQuoteRepository), rates, details, log)

		_, err := svc.CreateQuote(ctx, "", decimal.NewFromInt(10))
		assert.True(t, errors.Is(err, ErrInvalidQuote))
	})

	t.Run("No rate available", func(t *testing.T) {
		repo := new(mocks.MockPaymentQuoteRepository)
		svc := NewPaymentService(repo, staticRates{}, details, log)

		quote, err := svc.CreateQuote(ctx, "order-4", decimal.NewFromInt(100))

		assert.Nil(t, quote)
		assert.True(t, errors.Is(err, ErrRateUnavailable))
		repo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(mocks.MockPaymentQuoteRepository)
		svc := NewPaymentService(repo, rates, details, log)
		repo.On("Store", ctx, mock.Anything).Return("", errors.New("disk full")).Once()

		quote, err := svc.CreateQuote(ctx, "order-5", decimal.NewFromInt(100))

		assert.Nil(t, quote)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store payment quote")
		repo.AssertExpectations(t)
	})
}

func TestGetAndListQuotes(t *testing.T) {
	repo := new(mocks.MockPaymentQuoteRepository)
	svc := NewPaymentService(repo, staticRates{}, details, nil)
	ctx := context.Background()

	stored := &entity.PaymentQuote{ID: "q-1", OrderID: "order-1"}
	repo.On("FindByID", ctx, "q-1").Return(stored, nil).Once()
	repo.On("FindByID", ctx, "q-2").Return(nil, repository.ErrQuoteNotFound).Once()
	repo.On("FindByOrderID", ctx, "order-1").Return([]*entity.PaymentQuote{stored}, nil).Once()

	quote, err := svc.GetQuote(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, stored, quote)

	_, err = svc.GetQuote(ctx, "q-2")
	assert.True(t, errors.Is(err, repository.ErrQuoteNotFound))

	quotes, err := svc.ListQuotes(ctx, "order-1")
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	_, err = svc.ListQuotes(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidQuote))

	assert.Equal(t, details, svc.PaymentDetails())
	repo.AssertExpectations(t)
}
