package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
	"github.com/lightmyfireadmin/plombipro-app/internal/config"
)

func testRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseJwtSecret:   "test-secret",
		JwtAudience:         "authenticated",
		RateLimitBucketSize: 100,
		RateLimitRefillRate: 100,
	}
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	t.Cleanup(rateLimiter.Stop)
	return SetupRouter(cfg, &Services{}, rateLimiter)
}

func TestSetupRouter_Ping(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/functions/v1/ping", nil)
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestSetupRouter_PreflightOnEveryFunction(t *testing.T) {
	router := testRouter(t)
	for _, name := range []string{
		"create-payment-intent", "create-stripe-connect-account", "refund-payment", "send-email",
		"ocr-process-invoice", "generate-factur-x", "submit-chorus-pro",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/functions/v1/"+name, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, name)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), name)
	}
}

func TestSetupRouter_PaymentIntentRequiresToken(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/functions/v1/create-payment-intent", bytes.NewBufferString(`{"amount":10}`))
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Authorization header missing."}`, w.Body.String())
}

func TestSetupRouter_PaymentIntentChecksAmountBeforeToken(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/functions/v1/create-payment-intent", bytes.NewBufferString(`{"amount":"10"}`))
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Amount must be a number."}`, w.Body.String())
}

func serviceCall(t *testing.T, r *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestSetupServiceRouter_Shutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shutdownChan := make(chan struct{}, 1)
	r := SetupServiceRouter(nil, shutdownChan)

	code, resp := serviceCall(t, r, `{"method":"shutdown"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
	select {
	case <-shutdownChan:
	case <-time.After(time.Second):
		t.Fatal("shutdown was not signalled")
	}

	// A second request must not block when the channel is full.
	shutdownChan <- struct{}{}
	code, _ = serviceCall(t, r, `{"method":"shutdown"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestSetupServiceRouter_BadRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupServiceRouter(nil, make(chan struct{}, 1))

	code, resp := serviceCall(t, r, `{"method":"getTestEmail","arguments":["only-one"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "expected JSON array [templateID, email]")

	code, resp = serviceCall(t, r, `{"method":"nope"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Unknown service method: nope", resp["error"])
}
