package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/service"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

const (
	// Sentinel is returned by Convert when no usable price is available
	Sentinel = "—"

	// DefaultRefreshInterval is the time between scheduled refreshes
	DefaultRefreshInterval = 60 * time.Second

	// satoshi precision
	fractionDigits = 8
)

// RefreshResult describes one settled refresh
type RefreshResult struct {
	Price     decimal.Decimal
	Err       error
	FetchedAt time.Time
	Duration  time.Duration
}

// PriceFeedCache keeps the latest USD price of the tracked asset and converts
// USD amounts into asset amounts. Fetch failures never escape the cache; they
// are only observable through State.
type PriceFeedCache struct {
	source    service.PriceSource
	interval  time.Duration
	logger    logger.Logger
	onRefresh func(RefreshResult)
	now       func() time.Time

	mutex     sync.RWMutex
	snapshot  entity.RateSnapshot
	lastErr   error
	inFlight  int
	attempted bool

	lifecycle  sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	wg         sync.WaitGroup
}

// Option customizes a PriceFeedCache
type Option func(*PriceFeedCache)

// WithInterval sets the time between scheduled refreshes
func WithInterval(interval time.Duration) Option {
	return func(c *PriceFeedCache) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets the cache logger
func WithLogger(log logger.Logger) Option {
	return func(c *PriceFeedCache) { c.logger = log }
}

// WithRefreshHook registers a callback invoked after every settled refresh
func WithRefreshHook(hook func(RefreshResult)) Option {
	return func(c *PriceFeedCache) { c.onRefresh = hook }
}

// NewPriceFeedCache creates an empty cache backed by the given source
func NewPriceFeedCache(source service.PriceSource, opts ...Option) *PriceFeedCache {
	c := &PriceFeedCache{
		source:   source,
		interval: DefaultRefreshInterval,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.GetDefaultLogger()
	}

	return c
}

// Refresh fetches the current price. On success the snapshot is replaced and
// the error cleared; on failure the previous snapshot is kept and the error
// recorded. Overlapping calls are allowed and the last one to settle wins.
func (c *PriceFeedCache) Refresh(ctx context.Context) {
	c.mutex.Lock()
	c.inFlight++
	c.mutex.Unlock()

	start := time.Now()
	price, err := c.fetch(ctx)
	if err == nil && !price.IsPositive() {
		err = fmt.Errorf("price source returned non-positive price: %s", price.String())
	}
	fetchedAt := c.now()

	// A fetch aborted by Stop is not a feed failure.
	aborted := err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled)

	c.mutex.Lock()
	c.inFlight--
	switch {
	case aborted:
	case err != nil:
		c.lastErr = err
		c.attempted = true
	default:
		c.snapshot = entity.NewRateSnapshot(price, fetchedAt)
		c.lastErr = nil
		c.attempted = true
	}
	c.mutex.Unlock()

	result := RefreshResult{
		Price:     price,
		Err:       err,
		FetchedAt: fetchedAt,
		Duration:  time.Since(start),
	}

	switch {
	case aborted:
		c.logger.Debug("Price refresh aborted", nil)
		return
	case err != nil:
		c.logger.Warn("Price refresh failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": result.Duration.Milliseconds(),
		})
	default:
		c.logger.Info("Price refreshed", map[string]interface{}{
			"price":       price.String(),
			"duration_ms": result.Duration.Milliseconds(),
		})
	}

	if c.onRefresh != nil {
		c.onRefresh(result)
	}
}

// fetch calls the source, turning a panic into an error
func (c *PriceFeedCache) fetch(ctx context.Context) (price decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("price source panic: %v", r)
		}
	}()

	if c.source == nil {
		return decimal.Zero, errors.New("no price source configured")
	}

	return c.source.FetchPrice(ctx)
}

// Convert returns usdAmount priced in the tracked asset with exactly 8
// fractional digits, or Sentinel when no usable price is cached.
func (c *PriceFeedCache) Convert(usdAmount decimal.Decimal) string {
	return FormatConversion(c.Snapshot(), usdAmount)
}

// FormatConversion converts usdAmount at the snapshot's price. A missing or
// non-positive price, or a negative amount, yields Sentinel.
func FormatConversion(snapshot entity.RateSnapshot, usdAmount decimal.Decimal) string {
	if !snapshot.HasPrice() || usdAmount.IsNegative() {
		return Sentinel
	}

	return usdAmount.Div(*snapshot.Price).StringFixed(fractionDigits)
}

// Snapshot returns a copy of the current rate snapshot
func (c *PriceFeedCache) Snapshot() entity.RateSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return copySnapshot(c.snapshot)
}

// State returns what consumers observe: price, loading flag, error and
// the time of the last successful fetch.
func (c *PriceFeedCache) State() entity.PriceState {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	snap := copySnapshot(c.snapshot)
	state := entity.PriceState{
		BTCPrice:    snap.Price,
		IsLoading:   c.inFlight > 0,
		LastUpdated: snap.FetchedAt,
		Status:      c.statusLocked(),
	}
	if c.lastErr != nil {
		state.Error = c.lastErr.Error()
	}

	return state
}

// Status returns the position of the feed in its refresh cycle
func (c *PriceFeedCache) Status() entity.FeedStatus {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.statusLocked()
}

func (c *PriceFeedCache) statusLocked() entity.FeedStatus {
	switch {
	case c.inFlight > 0:
		return entity.StatusLoading
	case !c.attempted:
		return entity.StatusIdle
	case c.lastErr != nil:
		return entity.StatusErrored
	default:
		return entity.StatusReady
	}
}

// Start refreshes once immediately and then every interval until Stop is
// called or ctx is cancelled. Calling Start on a running cache is a no-op.
func (c *PriceFeedCache) Start(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.generation++

	c.wg.Add(1)
	go c.run(runCtx, c.generation)

	c.logger.Info("Price feed polling started", map[string]interface{}{
		"interval": c.interval.String(),
	})
}

func (c *PriceFeedCache) run(ctx context.Context, generation uint64) {
	defer c.wg.Done()
	defer c.release(generation)

	c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// release clears the lifecycle state when the loop exits because the parent
// context ended, so a later Start can poll again.
func (c *PriceFeedCache) release(generation uint64) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.cancel != nil && c.generation == generation {
		c.cancel()
		c.cancel = nil
	}
}

// Stop cancels scheduled refreshes and waits for the polling goroutine to
// exit. No refresh is scheduled after Stop returns.
func (c *PriceFeedCache) Stop() {
	c.lifecycle.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.lifecycle.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	c.wg.Wait()

	c.logger.Info("Price feed polling stopped", nil)
}

// Running reports whether scheduled refreshes are active
func (c *PriceFeedCache) Running() bool {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	return c.cancel != nil
}

func copySnapshot(s entity.RateSnapshot) entity.RateSnapshot {
	if s.Price == nil {
		return entity.RateSnapshot{}
	}
	return entity.NewRateSnapshot(*s.Price, *s.FetchedAt)
}
