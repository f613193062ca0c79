package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/service"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

const (
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"

	defaultAsset    = "bitcoin"
	defaultCurrency = "usd"

	maxBodyBytes    = 1 << 20
	maxErrorExcerpt = 256
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response
	ErrUnexpectedStatus = errors.New("price API returned error status")
	// ErrMalformedPayload is returned when the price field is missing or not a number
	ErrMalformedPayload = errors.New("malformed price payload")
	// ErrInvalidPrice is returned when the price is zero or negative
	ErrInvalidPrice = errors.New("invalid price value")
)

var _ service.PriceSource = (*CoinGeckoClient)(nil)

// CoinGeckoClient fetches spot prices from the CoinGecko simple-price API
type CoinGeckoClient struct {
	baseURL    string
	asset      string
	currency   string
	httpClient *http.Client
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     logger.Logger
}

// ClientOption customizes a CoinGeckoClient
type ClientOption func(*CoinGeckoClient)

// WithBaseURL points the client at a different simple-price endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *CoinGeckoClient) { c.baseURL = baseURL }
}

// WithAsset selects the CoinGecko asset id and quote currency
func WithAsset(asset, currency string) ClientOption {
	return func(c *CoinGeckoClient) {
		c.asset = asset
		c.currency = currency
	}
}

// WithMaxRetries sets how many attempts are made on transport errors
func WithMaxRetries(n int) ClientOption {
	return func(c *CoinGeckoClient) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff replaces the delay between transport retries
func WithBackoff(backoff func(attempt int) time.Duration) ClientOption {
	return func(c *CoinGeckoClient) { c.backoff = backoff }
}

// WithLogger sets the client logger
func WithLogger(log logger.Logger) ClientOption {
	return func(c *CoinGeckoClient) { c.logger = log }
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient(httpClient *http.Client, opts ...ClientOption) *CoinGeckoClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	c := &CoinGeckoClient{
		baseURL:    coinGeckoBaseURL,
		asset:      defaultAsset,
		currency:   defaultCurrency,
		httpClient: httpClient,
		maxRetries: 3,
		backoff:    quadraticBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.GetDefaultLogger()
	}

	return c
}

// quadraticBackoff waits 1s, 4s, 9s, ... between attempts
func quadraticBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * time.Second
}

// FetchPrice retrieves the current price of the configured asset
func (c *CoinGeckoClient) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", c.asset)
	query.Set("vs_currencies", c.currency)
	reqURL := c.baseURL + "?" + query.Encode()

	c.logger.Debug("Requesting spot price", map[string]interface{}{
		"url": reqURL,
	})

	resp, err := c.do(ctx, reqURL)
	if err != nil {
		return decimal.Zero, err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("%w: %d, body: %s", ErrUnexpectedStatus, resp.StatusCode, excerpt(body))
	}

	return c.parsePrice(body)
}

// do executes the GET request, retrying transport failures with backoff
func (c *CoinGeckoClient) do(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == c.maxRetries || ctx.Err() != nil {
			break
		}

		delay := c.backoff(attempt)
		c.logger.Warn("Price request failed, retrying", map[string]interface{}{
			"attempt":     attempt,
			"max_retries": c.maxRetries,
			"delay":       delay.String(),
			"error":       err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to execute request: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed to execute request after %d attempts: %w", c.maxRetries, lastErr)
}

// parsePrice extracts <asset>.<currency> from a payload such as
// {"bitcoin":{"usd":50000}}. The raw number text is parsed as a decimal so no
// float rounding is introduced.
func (c *CoinGeckoClient) parsePrice(body []byte) (decimal.Decimal, error) {
	if !gjson.ValidBytes(body) {
		return decimal.Zero, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}

	path := c.asset + "." + c.currency
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return decimal.Zero, fmt.Errorf("%w: field %q missing", ErrMalformedPayload, path)
	}
	if result.Type != gjson.Number {
		return decimal.Zero, fmt.Errorf("%w: field %q is not a number", ErrMalformedPayload, path)
	}

	price, err := decimal.NewFromString(result.Raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidPrice, price.String())
	}

	return price, nil
}

func excerpt(body []byte) string {
	if len(body) > maxErrorExcerpt {
		return string(body[:maxErrorExcerpt]) + "..."
	}
	return string(body)
}
