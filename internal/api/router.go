package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lightmyfireadmin/plombipro-app/internal/api/handlers"
	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/email"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// Services bundles what the public handlers need.
type Services struct {
	Payments  services.IPaymentService
	Emails    services.IEmailService
	OCR       services.IOCRService
	FacturX   services.IFacturXService
	ChorusPro services.IChorusProService
}

// SetupRouter configures and returns the main Gin engine. The caller owns
// the rate limiter and stops it on shutdown.
func SetupRouter(cfg *config.Config, svc *Services, rateLimiter *middleware.RateLimiterMiddleware) *gin.Engine {
	r := gin.Default()

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())
	r.Use(middleware.BodyLimit(cfg.MaxRequestBodyBytes))

	paymentHandler := handlers.NewPaymentHandler(svc.Payments)
	emailHandler := handlers.NewEmailHandler(svc.Emails)
	invoiceHandler := handlers.NewInvoiceHandler(svc.OCR, svc.FacturX, svc.ChorusPro)

	v1 := r.Group("/functions/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		v1.POST("/create-payment-intent",
			middleware.RequireNumberField("amount", services.AmountNotNumberMessage),
			middleware.AuthMiddleware(cfg.SupabaseJwtSecret, cfg.JwtAudience),
			paymentHandler.CreatePaymentIntent,
		)
		v1.POST("/create-stripe-connect-account", paymentHandler.CreateConnectAccount)
		v1.POST("/refund-payment", paymentHandler.RefundPayment)
		v1.POST("/send-email", emailHandler.SendEmail)
		v1.POST("/ocr-process-invoice", invoiceHandler.ProcessInvoiceOCR)
		v1.POST("/generate-factur-x", invoiceHandler.GenerateFacturX)
		v1.POST("/submit-chorus-pro", invoiceHandler.SubmitChorusPro)
	}

	return r
}

const (
	testEmailPollAttempts = 10
	testEmailPollInterval = 200 * time.Millisecond
)

// SetupServiceRouter configures and returns the service Gin engine used by
// operators and end-to-end tests.
func SetupServiceRouter(rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			getTestEmail(c, rdb, req.Arguments)
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// getTestEmail returns and removes a mock email stored by the Redis sender.
// Arguments are [templateID, email].
func getTestEmail(c *gin.Context, rdb *redis.Client, arguments json.RawMessage) {
	var args []string
	if err := json.Unmarshal(arguments, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateID, email]"})
		return
	}
	if rdb == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis not configured"})
		return
	}

	redisKey := email.MockEmailKey(args[1], args[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var emailJSON string
	found := false
	for i := 0; i < testEmailPollAttempts; i++ {
		var err error
		emailJSON, err = rdb.Get(ctx, redisKey).Result()
		if err == nil {
			found = true
			rdb.Del(ctx, redisKey)
			break
		}
		if err != redis.Nil {
			log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(testEmailPollInterval)
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(emailJSON), &emailData); err != nil {
		log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}
