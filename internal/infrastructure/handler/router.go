package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/metrics"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/middleware"
)

// NewRouter wires every route behind the middleware chain
func NewRouter(price *PriceHandler, payments *PaymentHandler, m *metrics.Metrics, log logger.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.RecoveryMiddleware(log),
		middleware.LoggingMiddleware(log),
	)

	if m != nil {
		router.Use(m.Middleware)
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	price.RegisterRoutes(router)
	payments.RegisterRoutes(router)

	return router
}
