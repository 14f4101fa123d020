// router/router_test.go
package router

import (
	"go-bank-ledger/logger"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestRouter_HealthCheck(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "Ledger API is healthy and running"}`, rr.Body.String())
}

func TestRouter_AttachesRequestID(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_PreservesIncomingRequestID(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "req-abc-123", rr.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := NewRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
