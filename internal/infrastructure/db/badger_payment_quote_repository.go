package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/repository"
)

const (
	quotePrefix      = "quote:"
	orderIndexPrefix = "order:"
)

var _ repository.PaymentQuoteRepository = (*BadgerPaymentQuoteRepository)(nil)

// BadgerPaymentQuoteRepository implements the payment quote repository interface using BadgerDB
type BadgerPaymentQuoteRepository struct {
	db *badger.DB
}

// NewBadgerPaymentQuoteRepository creates a new BadgerDB payment quote repository
func NewBadgerPaymentQuoteRepository(db *badger.DB) *BadgerPaymentQuoteRepository {
	return &BadgerPaymentQuoteRepository{db: db}
}

func quoteKey(id string) []byte {
	return []byte(quotePrefix + id)
}

// orderKey indexes a quote under its order; the value is the quote ID
func orderKey(orderID, id string) []byte {
	return []byte(orderIndexPrefix + orderID + ":" + id)
}

// Store saves a quote and its order index entry, returning the quote ID
func (r *BadgerPaymentQuoteRepository) Store(ctx context.Context, quote *entity.PaymentQuote) (string, error) {
	data, err := json.Marshal(quote)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment quote: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(quoteKey(quote.ID), data); err != nil {
			return err
		}
		return txn.Set(orderKey(quote.OrderID, quote.ID), []byte(quote.ID))
	})

	if err != nil {
		return "", fmt.Errorf("failed to store payment quote: %w", err)
	}

	return quote.ID, nil
}

// FindByID retrieves a quote by its unique identifier
func (r *BadgerPaymentQuoteRepository) FindByID(ctx context.Context, id string) (*entity.PaymentQuote, error) {
	var quote *entity.PaymentQuote

	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		quote, err = getQuote(txn, id)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", repository.ErrQuoteNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment quote: %w", err)
	}

	return quote, nil
}

// FindByOrderID lists the quotes issued for an order, oldest first
func (r *BadgerPaymentQuoteRepository) FindByOrderID(ctx context.Context, orderID string) ([]*entity.PaymentQuote, error) {
	quotes := make([]*entity.PaymentQuote, 0)
	prefix := []byte(orderIndexPrefix + orderID + ":")

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			quote, err := getQuote(txn, string(id))
			if err != nil {
				return err
			}
			quotes = append(quotes, quote)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list payment quotes: %w", err)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.Before(quotes[j].CreatedAt)
	})

	return quotes, nil
}

func getQuote(txn *badger.Txn, id string) (*entity.PaymentQuote, error) {
	item, err := txn.Get(quoteKey(id))
	if err != nil {
		return nil, err
	}

	var quote entity.PaymentQuote
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &quote)
	})
	if err != nil {
		return nil, err
	}

	return &quote, nil
}
