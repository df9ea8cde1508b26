package rest

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/pemetrics-backend/internal/adapter/repository/memory"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/irr"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
	"github.com/simaogato/pemetrics-backend/internal/usecase/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := zerolog.Nop()
	sess := session.NewSession(memory.NewManualEntryRepository(), normalizer.NewNormalizer(), logger)
	_, err := sess.Import(context.Background(), normalizer.Sheet{
		Name: "schedule",
		Rows: []normalizer.Row{
			{"Investment Name": "First", "Fund": "A", "Cost": 100.0, "Fair Value": 150.0, "Status": "unrealized", "Valuation Date": "2020-01-01"},
			{"Investment Name": "Second", "Fund": "A", "Cost": 200.0, "Fair Value": 180.0, "Status": "realized", "Valuation Date": "2021-01-01"},
			{"Investment Name": "Third", "Fund": "B", "Cost": 50.0, "Fair Value": 0.0, "Status": "realized", "Valuation Date": "2022-06-30"},
		},
	})
	require.NoError(t, err)

	calc := metrics.NewCalculator(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	dash := dashboard.NewDashboardService(sess, calc, irr.NewSolver(irr.DefaultOptions()), logger)
	return New(Config{Addr: ":0", Log: logger, Dashboard: dash})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_Health(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		target    string
		wantCount float64
		wantCost  string
	}{
		{name: "No filters", target: "/api/metrics", wantCount: 3, wantCost: "350"},
		{name: "Single fund", target: "/api/metrics?fund=A", wantCount: 2, wantCost: "300"},
		{name: "Repeated fund", target: "/api/metrics?fund=A&fund=B", wantCount: 3, wantCost: "350"},
		{name: "Status", target: "/api/metrics?status=realized", wantCount: 2, wantCost: "250"},
		{name: "Year range", target: "/api/metrics?year_from=2021&year_to=2022", wantCount: 2, wantCost: "250"},
		{name: "MOIC range", target: "/api/metrics?moic_min=1&moic_max=2", wantCount: 1, wantCost: "100"},
		{name: "Text search", target: "/api/metrics?q=sec", wantCount: 1, wantCost: "200"},
		{name: "Empty fund selection", target: "/api/metrics?fund=", wantCount: 0, wantCost: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			portfolio := decode(t, rec)["portfolio"].(map[string]any)
			assert.Equal(t, tt.wantCount, portfolio["count"])
			assert.Equal(t, tt.wantCost, portfolio["total_cost"])
		})
	}
}

func TestServer_MetricsReport(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics?fund=A&period=year&top_n=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "2023-01-01", body["as_of"])

	portfolio := body["portfolio"].(map[string]any)
	assert.InDelta(t, 1.1, portfolio["moic"], 1e-12)
	assert.InDelta(t, 0.6, portfolio["dpi"], 1e-12)
	assert.Equal(t, "solved", portfolio["irr_status"])

	assert.Len(t, body["series"], 2)
	assert.Len(t, body["top_by_moic"], 1)
	assert.Len(t, body["records"], 2)
	assert.Equal(t, []any{"A", "B"}, body["available_funds"])

	bounds := body["moic_bounds"].(map[string]any)
	assert.InDelta(t, 0, bounds["min"], 1e-12)
	assert.InDelta(t, 1.5, bounds["max"], 1e-12)
}

func TestServer_MetricsEmptySelection(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics?q=nothing")
	require.Equal(t, http.StatusOK, rec.Code)

	portfolio := decode(t, rec)["portfolio"].(map[string]any)
	assert.Nil(t, portfolio["moic"])
	assert.Nil(t, portfolio["irr"])
	assert.Equal(t, "insufficient_data", portfolio["irr_status"])
}

func TestServer_MetricsBadRequest(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		errMsg string
	}{
		{name: "Unknown status", target: "/api/metrics?status=pending", errMsg: "invalid status"},
		{name: "Unknown period", target: "/api/metrics?period=week", errMsg: "invalid period"},
		{name: "Non numeric year", target: "/api/metrics?year_from=abc", errMsg: "invalid year_from"},
		{name: "Non numeric moic", target: "/api/metrics?moic_min=x", errMsg: "invalid moic_min"},
		{name: "Negative top_n", target: "/api/metrics?top_n=-1", errMsg: "invalid top_n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], tt.errMsg)
		})
	}
}

func TestServer_RecordsCSV(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/records.csv?fund=B")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Third", rows[1][0])
}

func TestServer_Funds(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/funds")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"A", "B"}, decode(t, rec)["funds"])
}
