package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/assetflow-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/logger"
	"github.com/simaogato/assetflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetflow-backend/internal/usecase/history"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/stocktake"
)

type testAPI struct {
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Nop()
	holdingRepo := sqlite.NewHoldingRepository(db)
	portfolioService := portfolio.NewPortfolioService(holdingRepo)
	historyService := history.NewHistoryService(sqlite.NewHistoryRepository(db), log)
	dashboardService := dashboard.NewDashboardService(portfolioService, historyService, decimal.NewFromInt(5), 10)
	stockTakeService := stocktake.NewStockTakeService(portfolioService, holdingRepo, historyService, log, 10)

	verifier := auth.NewVerifier("test-secret")
	token, err := verifier.Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	h := NewApiHandler(portfolioService, dashboardService, historyService, stockTakeService, verifier, log)
	return &testAPI{router: h.Router(), token: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func object(m map[string]interface{}, name string) map[string]interface{} {
	v, _ := m[name].(map[string]interface{})
	return v
}

func TestApi_Healthz(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	w, body := api.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, w.Header().Get(RequestIDHeader), 26)
}

func TestApi_RequiresToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = "garbage"

	w, body := api.do(t, http.MethodGet, "/holdings", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthenticated", body["code"])
}

func TestApi_HoldingsFlow(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/holdings", map[string]interface{}{
		"kind":                "cash",
		"name":                "普通預金",
		"amount":              1000000,
		"annual_rate_percent": "0.1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := object(body, "holding")["id"].(string)
	assert.Equal(t, "1000000", object(body, "snapshot")["grand_total"])

	w, body = api.do(t, http.MethodPut, "/holdings/"+id, map[string]interface{}{
		"kind":   "cash",
		"name":   "普通預金",
		"amount": "1500000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1500000", object(body, "holding")["amount"])

	w, body = api.do(t, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1500000", body["total"])

	w, _ = api.do(t, http.MethodDelete, "/holdings/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = api.do(t, http.MethodGet, "/holdings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["empty"])
}

func TestApi_Projection(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(t, http.MethodPost, "/projection", map[string]interface{}{
		"principal":           1000000,
		"annual_rate_percent": 5,
		"years":               10,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1628895", body["future_value"])
	assert.Equal(t, "+628,895", body["increase_amount_display"])
}

func TestApi_StockTakeFlow(t *testing.T) {
	api := newTestAPI(t)

	_, body := api.do(t, http.MethodPost, "/holdings", map[string]interface{}{
		"kind":   "stock",
		"name":   "投資信託",
		"amount": 2000000,
	})
	id := object(body, "holding")["id"].(string)

	w, body := api.do(t, http.MethodPost, "/stocktake", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "editing", body["state"])

	w, body = api.do(t, http.MethodPut, "/stocktake/holdings/"+id, map[string]interface{}{"amount": "2,100,000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100000", object(body, "line")["difference"])

	w, body = api.do(t, http.MethodPost, "/stocktake/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2100000", object(body, "record")["current_assets"])

	w, body = api.do(t, http.MethodGet, "/stocktake", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FailedPrecondition", body["code"])

	w, body = api.do(t, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := body["groups"].([]interface{})
	require.Len(t, groups, 1)
	assert.Equal(t, "今月", groups[0].(map[string]interface{})["label"])
}

func TestApi_NegativeAdjustedAmountIsStrippedLikeText(t *testing.T) {
	api := newTestAPI(t)

	_, body := api.do(t, http.MethodPost, "/holdings", map[string]interface{}{
		"kind":   "cash",
		"name":   "財布",
		"amount": 5000,
	})
	id := object(body, "holding")["id"].(string)
	_, _ = api.do(t, http.MethodPost, "/stocktake", nil)

	w, body := api.do(t, http.MethodPut, "/stocktake/holdings/"+id, map[string]interface{}{"amount": -5})
	require.Equal(t, http.StatusOK, w.Code)
	fromNumber := object(body, "line")["adjusted_amount"]

	w, body = api.do(t, http.MethodPut, "/stocktake/holdings/"+id, map[string]interface{}{"amount": "-5"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", fromNumber)
	assert.Equal(t, fromNumber, object(body, "line")["adjusted_amount"])
}

func TestApi_ProjectionBounds(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"negative rate", map[string]interface{}{"principal": 1000000, "annual_rate_percent": -50, "years": 2}},
		{"rate above 100", map[string]interface{}{"principal": 1000000, "annual_rate_percent": 101, "years": 2}},
		{"years above maximum", map[string]interface{}{"principal": 1000000, "annual_rate_percent": 5, "years": 2000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := api.do(t, http.MethodPost, "/projection", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w, _ = api.do(t, http.MethodPost, "/simulate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w, body := api.do(t, http.MethodGet, "/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["groups"])
}

func TestApi_CancelRequiresConfirm(t *testing.T) {
	api := newTestAPI(t)

	_, body := api.do(t, http.MethodPost, "/holdings", map[string]interface{}{
		"kind":   "cash",
		"name":   "財布",
		"amount": 5000,
	})
	id := object(body, "holding")["id"].(string)

	_, _ = api.do(t, http.MethodPost, "/stocktake", map[string]interface{}{"years": 3})
	_, _ = api.do(t, http.MethodPut, "/stocktake/holdings/"+id, map[string]interface{}{"amount": 4000})

	w, _ := api.do(t, http.MethodPost, "/stocktake/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = api.do(t, http.MethodPost, "/stocktake/cancel", map[string]interface{}{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", body["state"])
}

func TestApi_Errors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name         string
		method       string
		path         string
		body         interface{}
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "empty name",
			method:       http.MethodPost,
			path:         "/holdings",
			body:         map[string]interface{}{"kind": "cash", "name": "", "amount": 100},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "名前を入力してください",
		},
		{
			name:         "amount over ceiling",
			method:       http.MethodPost,
			path:         "/holdings",
			body:         map[string]interface{}{"kind": "cash", "name": "x", "amount": "1000000000000"},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "999,999,999,999",
		},
		{
			name:         "bad id",
			method:       http.MethodDelete,
			path:         "/history/nope",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown record",
			method:       http.MethodGet,
			path:         "/history/" + uuid.NewString(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "missing principal",
			method:       http.MethodPost,
			path:         "/projection",
			body:         map[string]interface{}{"years": 10},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "negative years",
			method:       http.MethodPost,
			path:         "/projection",
			body:         map[string]interface{}{"principal": 1, "years": -5},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := api.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedMsg != "" {
				assert.Contains(t, body["error"], tt.expectedMsg)
			}
		})
	}
}
