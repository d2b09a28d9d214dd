package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"roofio/internal/domain"
	"roofio/internal/handler"
	"roofio/internal/metrics"
	"roofio/internal/router"
	"roofio/internal/schema"
	"roofio/mocks"
)

func setup(svc *mocks.MockParseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.Init()
	return router.Setup(nil, handler.NewDocumentHandler(svc, nil, 10), handler.NewHealthHandler())
}

func TestRouter_Healthz(t *testing.T) {
	r := setup(new(mocks.MockParseService))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	r := setup(new(mocks.MockParseService))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_APIRoutes(t *testing.T) {
	svc := new(mocks.MockParseService)
	svc.On("RequiredFields").Return(schema.Default())
	svc.On("CheapFields", mock.Anything).Return([]string{"roof_type"})
	svc.On("ParseText", mock.Anything, "Roof type: TPO", domain.DocTypeScope, "x").
		Return(&domain.ParseResult{DocumentID: "x", Success: true})
	r := setup(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/document-types", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse-text",
		strings.NewReader(`{"text":"Roof type: TPO","document_type":"scope","document_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}
