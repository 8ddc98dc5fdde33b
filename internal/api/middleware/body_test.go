package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
)

func setupNumberFieldEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pay", middleware.RequireNumberField("amount", "Amount must be a number."), func(c *gin.Context) {
		var body struct {
			Amount float64 `json:"amount"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"amount": body.Amount})
	})
	return r
}

func TestRequireNumberField_PassesBodyThrough(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/pay", bytes.NewBufferString(`{"amount":12.5}`))
	setupNumberFieldEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"amount":12.5}`, w.Body.String())
}

func TestRequireNumberField_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string amount", `{"amount":"12"}`, `{"error":"Amount must be a number."}`},
		{"null amount", `{"amount":null}`, `{"error":"Amount must be a number."}`},
		{"missing amount", `{"currency":"eur"}`, `{"error":"Amount must be a number."}`},
		{"invalid json", `{"amount":`, `{"error":"Invalid JSON body."}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/pay", bytes.NewBufferString(tt.body))
			setupNumberFieldEngine().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestBodyLimit_RejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BodyLimit(16))
	r.POST("/pay", middleware.RequireNumberField("amount", "Amount must be a number."), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/pay", bytes.NewBufferString(`{"amount":1,"note":"much too long for the cap"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large."}`, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/pay", bytes.NewBufferString(`{"amount":1}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
