package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/processors"
)

func solveRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	logger.InitLogger("error")

	handler := NewPricingHandler(nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/prices/solve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleSolvePrice(rec, req)
	return rec
}

func TestHandleSolvePrice(t *testing.T) {
	rec := solveRequest(t, `{
		"unitCost": 300,
		"avgLogistics": 50,
		"commissionPct": 20,
		"acquiringPct": 2,
		"taxPct": 6,
		"otherCosts": 50,
		"desiredProfit": 300,
		"buyerDiscountPct": 15
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result processors.PriceSolverResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 973.0, result.SitePrice)
	assert.Equal(t, 828.0, result.BuyerPrice)
}

func TestHandleSolvePriceDegenerateMargin(t *testing.T) {
	rec := solveRequest(t, `{"commissionPct": 60, "acquiringPct": 30, "taxPct": 15}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Contains(t, payload["error"], "consume")
}

func TestHandleSolvePriceBadPayload(t *testing.T) {
	rec := solveRequest(t, `{"unitCost": "not a number"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseScope(t *testing.T) {
	logger.InitLogger("error")

	req := httptest.NewRequest(http.MethodGet, "/api/summary?file=abc&start=2024-05-01&end=2024-05-31", nil)
	scope, err := parseScope(req)
	require.NoError(t, err)

	assert.Equal(t, "abc", scope.FileID)
	require.NotNil(t, scope.Start)
	require.NotNil(t, scope.End)
	assert.Equal(t, "2024-05-01", scope.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-05-31", scope.End.Format("2006-01-02"))

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	scope, err = parseScope(req)
	require.NoError(t, err)
	assert.Empty(t, scope.FileID)
	assert.Nil(t, scope.Start)
	assert.Nil(t, scope.End)

	req = httptest.NewRequest(http.MethodGet, "/api/summary?start=31.05.2024", nil)
	_, err = parseScope(req)
	assert.Error(t, err)
}
