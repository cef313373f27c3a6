package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaprojector/internal/mocks"
	"github.com/davicafu/hexaprojector/internal/salesreport/application"
	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
)

func newRouter(repo *mocks.MockReportRepo, withTrend bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	var trend reportDomain.SalesTrendRepository
	if withTrend {
		trend = repo
	}
	r := gin.New()
	RegisterReportRoutes(r, NewReportHandler(application.NewReportService(repo, trend, nil, 60, zap.NewNop())))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetReport_HTTPContract(t *testing.T) {
	// Arrange
	repo := new(mocks.MockReportRepo)
	report := reportDomain.NewSalesReport("2025-01-10")
	report.Put("Electronics", "Asia", reportDomain.RegionSales{
		DailySales: decimal.NewFromInt(100), TotalMonthlySales: decimal.NewFromInt(100),
		TargetSales: decimal.NewFromInt(1000), TargetHitRate: decimal.RequireFromString("0.1"),
	})
	repo.On("GetReport", mock.Anything, "2025-01-10").Return(report, nil)
	repo.On("GetReport", mock.Anything, "2025-01-09").Return(nil, reportDomain.ErrReportNotFound)
	r := newRouter(repo, false)

	// Act
	ok := get(r, "/reports/sales/2025-01-10")

	// Assert
	require.Equal(t, http.StatusOK, ok.Code)
	var body struct {
		Data reportDomain.SalesReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &body))
	sales, found := body.Data.Bucket("Electronics", "Asia")
	require.True(t, found)
	assert.True(t, sales.TargetHitRate.Equal(decimal.RequireFromString("0.1")))

	assert.Equal(t, http.StatusNotFound, get(r, "/reports/sales/2025-01-09").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/reports/sales/january").Code)
}

func TestGetTrend_HTTPContract(t *testing.T) {
	repo := new(mocks.MockReportRepo)
	repo.On("DailyTrend", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, get(newRouter(repo, false), "/reports/sales/trend?from=2025-01-01&to=2025-01-31").Code)

	rec := get(newRouter(repo, true), "/reports/sales/trend?from=2025-01-01&to=2025-01-31")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, get(newRouter(repo, true), "/reports/sales/trend?from=x&to=y").Code)
}
