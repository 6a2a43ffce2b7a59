package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/durvalm/aram-reports/internal/repository/store"
	"github.com/durvalm/aram-reports/internal/service/reporting"
)

func init() { gin.SetMode(gin.TestMode) }

func newDashboardRig(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "relatorios.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := NewDashboardHandler(reporting.NewService(st, zap.NewNop()), zap.NewNop())
	engine := gin.New()
	engine.GET("/api/overview", h.Overview)
	engine.GET("/api/period", h.Period)
	engine.GET("/api/charts", h.Charts)
	return engine, st
}

func doJSON(t *testing.T, engine *gin.Engine, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	engine.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func doJSONPost(t *testing.T, engine *gin.Engine, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	engine.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestOverviewEmptyStoreRendersNoDataState(t *testing.T) {
	engine, _ := newDashboardRig(t)

	code, body := doJSON(t, engine, "/api/overview")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["latest_day"])
	assert.Nil(t, body["month_to_date"])
	assert.Nil(t, body["internal_channels"])
	assert.Empty(t, body["top_buyers"])
}

func TestOverviewFormatsBrazilianLocale(t *testing.T) {
	engine, st := newDashboardRig(t)

	// Today's date keeps the row inside the month-to-date window.
	today := time.Now().Format("02/01/2006")
	require.NoError(t, st.Insert(context.Background(), "rds_vendas", map[string]any{
		"data":            today,
		"valor_total":     1234567.89,
		"valor_eventos":   1000.0,
		"pax_hoje":        132,
		"ocupacao_hoje":   87.5,
		"diaria_media_uh": 289.9,
	}))
	require.NoError(t, st.Insert(context.Background(), "chart_compradores_duplo", map[string]any{
		"data":           today,
		"comprador":      "BOOKING.COM",
		"total_reservas": 42.0,
		"reservas_dia":   3.0,
		"dia_referencia": today,
	}))

	code, body := doJSON(t, engine, "/api/overview")
	require.Equal(t, http.StatusOK, code)

	latest, ok := body["latest_day"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, today, latest["date"])
	assert.Equal(t, "R$ 1.234.567,89", latest["revenue"])
	assert.Equal(t, "R$ 1.235.567,89", latest["total_revenue"])
	assert.Equal(t, "87,5%", latest["occupancy"])
	assert.Equal(t, "132", latest["guests"])

	mtd, ok := body["month_to_date"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "R$ 1.234.567,89", mtd["revenue"])
	assert.Equal(t, "1", mtd["records"])

	top, ok := body["top_buyers"].([]any)
	require.True(t, ok)
	require.Len(t, top, 1)
	assert.Equal(t, "BOOKING.COM", top[0].(map[string]any)["buyer"])
}

func TestPeriodRejectsInvalidParameters(t *testing.T) {
	engine, _ := newDashboardRig(t)

	cases := []struct {
		name   string
		target string
	}{
		{"missing both", "/api/period"},
		{"iso layout", "/api/period?start=2025-08-01&end=2025-08-15"},
		{"garbage", "/api/period?start=abc&end=def"},
		{"end before start", "/api/period?start=15/08/2025&end=01/08/2025"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := doJSON(t, engine, tc.target)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPeriodReturnsRangeFigures(t *testing.T) {
	engine, st := newDashboardRig(t)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, "rds_vendas", map[string]any{
		"data": "10/08/2025", "valor_total": 1500.0, "valor_eventos": 0.0,
		"pax_hoje": 10, "ocupacao_hoje": 60.0, "diaria_media_uh": 150.0,
	}))
	require.NoError(t, st.Insert(ctx, "rds_vendas", map[string]any{
		"data": "20/08/2025", "valor_total": 9999.0, "valor_eventos": 0.0,
		"pax_hoje": 99, "ocupacao_hoje": 10.0, "diaria_media_uh": 100.0,
	}))
	require.NoError(t, st.Insert(ctx, "chart_compradores_duplo", map[string]any{
		"data": "10/08/2025", "comprador": "EXPEDIA",
		"total_reservas": 12.0, "reservas_dia": 2.0, "dia_referencia": "11/08/2025",
	}))

	code, body := doJSON(t, engine, "/api/period?start=01/08/2025&end=15/08/2025")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "01/08/2025", body["start"])
	assert.Equal(t, "15/08/2025", body["end"])

	sales, ok := body["sales"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "R$ 1.500,00", sales["revenue"])
	assert.EqualValues(t, 1, sales["records"])

	detail, ok := body["sales_detail"].([]any)
	require.True(t, ok)
	assert.Len(t, detail, 1)

	buyers, ok := body["buyers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", buyers["unique_buyers"])
}

func TestChartsReturnRawSeries(t *testing.T) {
	engine, st := newDashboardRig(t)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, "rds_vendas", map[string]any{
		"data": "10/08/2025", "valor_total": 1500.0, "valor_eventos": 0.0,
		"pax_hoje": 10, "ocupacao_hoje": 60.0, "diaria_media_uh": 150.0,
	}))
	require.NoError(t, st.Insert(ctx, "chart_compradores_duplo", map[string]any{
		"data": "11/08/2025", "comprador": "EXPEDIA",
		"total_reservas": 12.0, "reservas_dia": 2.0, "dia_referencia": "12/08/2025",
	}))

	code, body := doJSON(t, engine, "/api/charts")
	require.Equal(t, http.StatusOK, code)

	series, ok := body["sales_series"].([]any)
	require.True(t, ok)
	require.Len(t, series, 1)
	point := series[0].(map[string]any)
	assert.Equal(t, "10/08/2025", point["date"])
	assert.InDelta(t, 1500, point["revenue"].(float64), 0.001)

	shares, ok := body["buyer_shares"].([]any)
	require.True(t, ok)
	require.Len(t, shares, 1)
	assert.Equal(t, "100,0%", shares[0].(map[string]any)["share"])

	comparison, ok := body["comparison"].(map[string]any)
	require.True(t, ok)
	points := comparison["points"].([]any)
	require.Len(t, points, 2)
	first := points[0].(map[string]any)
	assert.Equal(t, "10/08/2025", first["date"])
	assert.Equal(t, true, first["missing_buyers"])
}
