package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

// splitFeed reports a different price through State than through Snapshot,
// as happens when a refresh settles between two reads
type splitFeed struct {
	state    entity.PriceState
	snapshot entity.RateSnapshot
}

func (f *splitFeed) State() entity.PriceState      { return f.state }
func (f *splitFeed) Snapshot() entity.RateSnapshot { return f.snapshot }
func (f *splitFeed) Refresh(ctx context.Context)     {}

func TestConvertAmountUsesOneSnapshot(t *testing.T) {
	stale := decimal.NewFromInt(40000)
	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	feed := &splitFeed{
		state:    entity.PriceState{BTCPrice: &stale, Status: entity.StatusReady},
		snapshot: entity.NewRateSnapshot(decimal.NewFromInt(50000), fetchedAt),
	}
	h := NewPriceHandler(feed, nil, logger.NewJSONLogger(nil, logger.FatalLevel))

	req := httptest.NewRequest(http.MethodGet, "/price/convert?usd=100", nil)
	rr := httptest.NewRecorder()
	h.ConvertAmount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "0.00200000", resp.BTCAmount)
	assert.True(t, resp.Available)
	require.NotNil(t, resp.BTCPrice)
	assert.Equal(t, "50000", *resp.BTCPrice)
}

func TestConvertAmountWithoutSnapshot(t *testing.T) {
	h := NewPriceHandler(&splitFeed{}, nil, logger.NewJSONLogger(nil, logger.FatalLevel))

	req := httptest.NewRequest(http.MethodGet, "/price/convert?usd=100", nil)
	rr := httptest.NewRecorder()
	h.ConvertAmount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "—", resp.BTCAmount)
	assert.False(t, resp.Available)
	assert.Nil(t, resp.BTCPrice)
}
