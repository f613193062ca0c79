package internal

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/application/service"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/cache"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/db"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/mocks"
)

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	log := logger.NewJSONLogger(nil, logger.FatalLevel)

	badgerDB, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	defer badgerDB.Close()

	source := new(mocks.MockPriceSource)
	source.On("FetchPrice", mock.Anything).Return(decimal.NewFromInt(64000), nil)

	feed := cache.NewPriceFeedCache(source, cache.WithLogger(log))
	feed.Refresh(context.Background())
	require.Equal(t, entity.StatusReady, feed.Status())

	details := entity.PaymentDetails{WalletAddress: "bc1qperftest", Network: "bitcoin", Asset: "BTC"}
	paymentService := service.NewPaymentService(db.NewBadgerPaymentQuoteRepository(badgerDB), feed, details, log)

	// Performance test configuration
	numQuotes := 200
	concurrency := 10
	perWorker := numQuotes / concurrency

	var quoteIDs sync.Map

	t.Run("Quote Creation", func(t *testing.T) {
		var failures atomic.Int32
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					orderID := fmt.Sprintf("order-%d", workerID)
					amount := decimal.NewFromInt(int64(100 + rand.Intn(10000))).Div(decimal.NewFromInt(100))

					quote, err := paymentService.CreateQuote(ctx, orderID, amount)
					if err != nil {
						failures.Add(1)
						t.Logf("Error creating quote: %v", err)
						continue
					}
					quoteIDs.Store(quote.ID, orderID)
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numQuotes) / duration.Seconds()
		t.Logf("Quote creation: %d quotes in %v (%.2f quotes/sec)", numQuotes, duration, throughput)
		require.Zero(t, failures.Load())
	})

	t.Run("Quote Retrieval", func(t *testing.T) {
		var ids []string
		quoteIDs.Range(func(key, _ interface{}) bool {
			ids = append(ids, key.(string))
			return true
		})
		require.Len(t, ids, numQuotes)

		var failures atomic.Int32
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					if _, err := paymentService.GetQuote(ctx, ids[workerID*perWorker+j]); err != nil {
						failures.Add(1)
						t.Logf("Error retrieving quote: %v", err)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numQuotes) / duration.Seconds()
		t.Logf("Quote retrieval: %d quotes in %v (%.2f quotes/sec)", numQuotes, duration, throughput)
		require.Zero(t, failures.Load())
	})

	t.Run("Order Listing", func(t *testing.T) {
		for i := 0; i < concurrency; i++ {
			quotes, err := paymentService.ListQuotes(context.Background(), fmt.Sprintf("order-%d", i))
			require.NoError(t, err)
			require.Len(t, quotes, perWorker)
		}
	})

	t.Run("Conversion Under Refresh", func(t *testing.T) {
		numConversions := 10000
		startTime := time.Now()

		ctx, cancel := context.WithCancel(context.Background())
		refresherDone := make(chan struct{})
		go func() {
			defer close(refresherDone)
			for ctx.Err() == nil {
				feed.Refresh(ctx)
			}
		}()

		var sentinels atomic.Int32
		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < numConversions/concurrency; j++ {
					if feed.Convert(decimal.NewFromInt(int64(1+j))) == cache.Sentinel {
						sentinels.Add(1)
					}
				}
			}()
		}

		wg.Wait()
		cancel()
		<-refresherDone
		duration := time.Since(startTime)

		throughput := float64(numConversions) / duration.Seconds()
		t.Logf("Conversion: %d conversions in %v (%.2f conv/sec)", numConversions, duration, throughput)
		require.Zero(t, sentinels.Load())
	})
}
