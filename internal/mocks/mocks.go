// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

// MockPaymentQuoteRepository mocks the PaymentQuoteRepository interface
type MockPaymentQuoteRepository struct {
	mock.Mock
}

func (m *MockPaymentQuoteRepository) Store(ctx context.Context, quote *entity.PaymentQuote) (string, error) {
	args := m.Called(ctx, quote)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentQuoteRepository) FindByID(ctx context.Context, id string) (*entity.PaymentQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentQuote), args.Error(1)
}

func (m *MockPaymentQuoteRepository) FindByOrderID(ctx context.Context, orderID string) ([]*entity.PaymentQuote, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentQuote), args.Error(1)
}

// MockPriceSource mocks the PriceSource interface
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

var _ logger.Logger = (*MockLogger)(nil)

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
