package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/davicafu/hexaprojector/internal/mocks"
	"github.com/davicafu/hexaprojector/internal/topproducts/application"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

func newRouter(repo *mocks.MockRankingRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRankingRoutes(r, NewRankingHandler(application.NewRankingService(repo, zap.NewNop())))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTopOfHour_HTTPContract(t *testing.T) {
	// Arrange
	repo := new(mocks.MockRankingRepo)
	repo.On("HourRanking", mock.Anything, "2025011009").Return([]rankingDomain.ProductRanking{
		{ProductID: "p-1", Quantity: 5}, {ProductID: "p-2", Quantity: 3},
	}, nil)
	repo.On("ProductNames", mock.Anything, []string{"p-1"}).Return(map[string]string{"p-1": "Mouse"}, nil)
	r := newRouter(repo)

	// Act
	rec := get(r, "/top-products/2025011009?limit=1")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[{"productId":"p-1","productName":"Mouse","quantity":5}]}`, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, get(r, "/top-products/2025-01-10").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/top-products/2025011009?limit=0").Code)
}

func TestTopOfLastHours_HTTPContract(t *testing.T) {
	repo := new(mocks.MockRankingRepo)
	repo.On("HourRanking", mock.Anything, mock.Anything).Return(nil, nil)
	r := newRouter(repo)

	rec := get(r, "/top-products?hours=3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	repo.AssertNumberOfCalls(t, "HourRanking", 3)
	assert.Equal(t, http.StatusBadRequest, get(r, "/top-products?hours=abc").Code)
}
