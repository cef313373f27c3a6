package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/davicafu/hexaprojector/internal/fulfillment/application"
	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
	"github.com/davicafu/hexaprojector/internal/mocks"
)

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetFulfillment_HTTPContract(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	repo := new(mocks.MockFulfillmentRepo)
	repo.On("GetByOrderID", mock.Anything, "o-1").Return(&fulfillmentDomain.Fulfillment{
		ID: fulfillmentDomain.IDFor("o-1"), OrderID: "o-1", Status: fulfillmentDomain.StatusStarted, CreatedAt: at, UpdatedAt: at,
	}, nil)
	repo.On("GetByOrderID", mock.Anything, "o-2").Return(nil, fulfillmentDomain.ErrFulfillmentNotFound)
	repo.On("GetByOrderID", mock.Anything, "o-3").Return(nil, errors.New("db down"))
	r := gin.New()
	RegisterFulfillmentRoutes(r, NewFulfillmentHandler(application.NewFulfillmentService(repo)))

	// Act
	ok := get(r, "/fulfillments/o-1")

	// Assert
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), `"status":"Started"`)
	assert.Contains(t, ok.Body.String(), fulfillmentDomain.IDFor("o-1").String())
	assert.Equal(t, http.StatusNotFound, get(r, "/fulfillments/o-2").Code)
	assert.Equal(t, http.StatusInternalServerError, get(r, "/fulfillments/o-3").Code)
}
