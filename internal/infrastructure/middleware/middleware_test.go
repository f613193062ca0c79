// internal/infrastructure/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Context().Value(requestIDKey)
		assert.NotNil(t, requestID)
		w.Write([]byte(requestID.(string)))
	})

	middleware := RequestIDMiddleware(nextHandler)

	// No incoming request ID
	req := httptest.NewRequest("GET", "/price", nil)
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, w.Body.String())

	// Incoming request ID is preserved
	req = httptest.NewRequest("GET", "/price", nil)
	req.Header.Set(RequestIDHeader, "test-id-123")
	w = httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "test-id-123", w.Body.String())
}

func TestGetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-id-123")
	assert.Equal(t, "test-id-123", GetRequestID(ctx))

	assert.Equal(t, "unknown", GetRequestID(context.Background()))
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.InfoLevel)

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r.Context())))
	})

	chain := RequestIDMiddleware(LoggingMiddleware(log)(finalHandler))

	req := httptest.NewRequest("GET", "/price", nil)
	req.Header.Set(RequestIDHeader, "test-id-123")
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Body.String())

	logs := buf.String()
	assert.Contains(t, logs, "test-id-123", "Request ID should be in logs")
	assert.Contains(t, logs, "Request handled")
	assert.Contains(t, logs, `"content_length":11`)
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.InfoLevel)

	statusHandler := func(code int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
	}

	LoggingMiddleware(log)(statusHandler(http.StatusNotFound)).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"status":404`)

	buf.Reset()
	LoggingMiddleware(log)(statusHandler(http.StatusServiceUnavailable)).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.InfoLevel)

	handler := RecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/price", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	assert.Contains(t, buf.String(), "Handler panic recovered")
}

func TestRateLimitMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, logger.InfoLevel)

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	handler := RateLimitMiddleware(limiter, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/price/refresh", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/price/refresh", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	assert.Contains(t, buf.String(), "Rate limit exceeded")
}
