package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/application/service"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/repository"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/middleware"
)

// PaymentHandler handles HTTP requests for payment details and quotes
type PaymentHandler struct {
	service *service.PaymentService
	logger  logger.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(svc *service.PaymentService, log logger.Logger) *PaymentHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PaymentHandler{
		service: svc,
		logger:  log,
	}
}

// GetPaymentDetails returns the receiving wallet for crypto payments
func (h *PaymentHandler) GetPaymentDetails(w http.ResponseWriter, r *http.Request) {
	details := h.service.PaymentDetails()

	sendJSON(w, h.logger, http.StatusOK, PaymentDetailsResponse{
		WalletAddress: details.WalletAddress,
		Network:       details.Network,
		Asset:         details.Asset,
	})
}

// CreateQuote prices an order total in BTC
func (h *PaymentHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	quote, err := h.service.CreateQuote(r.Context(), req.OrderID, req.USDAmount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuote):
			sendErrorResponse(w, h.logger, "Invalid quote request", err.Error(),
				http.StatusBadRequest, requestID)
		case errors.Is(err, service.ErrRateUnavailable):
			sendErrorResponse(w, h.logger, "No exchange rate available",
				"The BTC price has not been fetched yet. Please try again later.",
				http.StatusServiceUnavailable, requestID)
		default:
			h.logger.Error("Unexpected error in create quote", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred while creating the quote",
				http.StatusInternalServerError, requestID)
		}
		return
	}

	sendJSON(w, h.logger, http.StatusCreated, newQuoteResponse(quote))
}

// GetQuote handles retrieving a quote by ID
func (h *PaymentHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	quote, err := h.service.GetQuote(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrQuoteNotFound) {
			sendErrorResponse(w, h.logger, "Quote not found",
				"The requested payment quote could not be found", http.StatusNotFound, requestID)
			return
		}

		h.logger.Error("Unexpected error in get quote", map[string]interface{}{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while retrieving the quote",
			http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newQuoteResponse(quote))
}

// ListQuotes returns the quotes issued for the order_id query parameter
func (h *PaymentHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	orderID := r.URL.Query().Get("order_id")

	quotes, err := h.service.ListQuotes(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuote) {
			sendErrorResponse(w, h.logger, "Missing order_id parameter",
				"The 'order_id' query parameter is required", http.StatusBadRequest, requestID)
			return
		}

		h.logger.Error("Unexpected error in list quotes", map[string]interface{}{
			"request_id": requestID,
			"order_id":   orderID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing quotes",
			http.StatusInternalServerError, requestID)
		return
	}

	resp := QuoteListResponse{OrderID: orderID, Quotes: make([]QuoteResponse, 0, len(quotes))}
	for _, q := range quotes {
		resp.Quotes = append(resp.Quotes, newQuoteResponse(q))
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the payment handler routes
func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/payment-details", h.GetPaymentDetails).Methods(http.MethodGet)
	router.HandleFunc("/payments/quotes", h.CreateQuote).Methods(http.MethodPost)
	router.HandleFunc("/payments/quotes", h.ListQuotes).Methods(http.MethodGet)
	router.HandleFunc("/payments/quotes/{id}", h.GetQuote).Methods(http.MethodGet)

	h.logger.Info("Payment routes registered", map[string]interface{}{
		"routes": []string{
			"GET /payment-details",
			"POST /payments/quotes",
			"GET /payments/quotes",
			"GET /payments/quotes/{id}",
		},
	})
}
