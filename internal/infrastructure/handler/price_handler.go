// Package handler internal/infrastructure/handler/price_handler.go
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/middleware"
)

// PriceFeed is the part of the price cache the HTTP API uses
type PriceFeed interface {
	State() entity.PriceState
	Snapshot() entity.RateSnapshot
	Refresh(ctx context.Context)
}

// PriceHandler handles HTTP requests for the BTC price feed
type PriceHandler struct {
	feed    PriceFeed
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewPriceHandler creates a new price handler. A nil limiter disables
// rate limiting of manual refreshes.
func NewPriceHandler(feed PriceFeed, limiter *rate.Limiter, log logger.Logger) *PriceHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return &PriceHandler{
		feed:    feed,
		limiter: limiter,
		logger:  log,
	}
}

// GetPrice returns the current feed state
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, newPriceResponse(h.feed.State()))
}

// RefreshPrice triggers a refresh and returns the resulting state. Fetch
// failures are reported in the state, not as an HTTP error.
func (h *PriceHandler) RefreshPrice(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Manual price refresh requested", map[string]interface{}{
		"request_id": requestID,
	})

	h.feed.Refresh(r.Context())

	sendJSON(w, h.logger, http.StatusOK, newPriceResponse(h.feed.State()))
}

// ConvertAmount converts the usd query parameter into BTC
func (h *PriceHandler) ConvertAmount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	raw := r.URL.Query().Get("usd")
	if raw == "" {
		h.logger.Warn("Missing usd parameter", map[string]interface{}{
			"request_id": requestID,
		})
		sendErrorResponse(w, h.logger, "Missing usd parameter",
			"The 'usd' query parameter is required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		h.logger.Warn("Invalid usd amount", map[string]interface{}{
			"request_id": requestID,
			"usd":        raw,
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a positive number", http.StatusBadRequest, requestID)
		return
	}

	resp := newConvertResponse(h.feed.Snapshot(), amount)

	h.logger.Debug("Amount converted", map[string]interface{}{
		"request_id": requestID,
		"usd_amount": resp.USDAmount,
		"btc_amount": resp.BTCAmount,
	})

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// Health reports liveness and the feed status
func (h *PriceHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:     "ok",
		FeedStatus: string(h.feed.State().Status),
	})
}

// RegisterRoutes registers the price handler routes
func (h *PriceHandler) RegisterRoutes(router *mux.Router) {
	refresh := middleware.RateLimitMiddleware(h.limiter, h.logger)(http.HandlerFunc(h.RefreshPrice))

	router.HandleFunc("/price", h.GetPrice).Methods(http.MethodGet)
	router.Handle("/price/refresh", refresh).Methods(http.MethodPost)
	router.HandleFunc("/price/convert", h.ConvertAmount).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	h.logger.Info("Price routes registered", map[string]interface{}{
		"routes": []string{
			"GET /price",
			"POST /price/refresh",
			"GET /price/convert",
			"GET /health",
		},
	})
}
