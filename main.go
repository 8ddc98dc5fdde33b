package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lightmyfireadmin/plombipro-app/internal/api"
	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
	"github.com/lightmyfireadmin/plombipro-app/internal/cache"
	"github.com/lightmyfireadmin/plombipro-app/internal/chorus"
	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/db"
	"github.com/lightmyfireadmin/plombipro-app/internal/email"
	"github.com/lightmyfireadmin/plombipro-app/internal/ocr"
	"github.com/lightmyfireadmin/plombipro-app/internal/payments"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
	"github.com/lightmyfireadmin/plombipro-app/internal/scraper"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
	"github.com/lightmyfireadmin/plombipro-app/internal/storage"
	"github.com/lightmyfireadmin/plombipro-app/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks and scheduler), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the row store
	var repos *repository.Repositories
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		gdb, err := db.ConnectPostgres(cfg.PostgresDSN, cfg.AutoMigrate)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer func() {
			if err := db.DisconnectPostgres(gdb); err != nil {
				log.Printf("Error disconnecting from Postgres: %v", err)
			}
		}()
		repos = repository.NewPostgresRepositories(gdb)
	default:
		mongoClient, mongoDb, err := db.ConnectMongo(cfg.MongoURI, cfg.MongoDbName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := db.DisconnectMongo(mongoClient); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
			}
		}()
		repos = repository.NewMongoRepositories(mongoDb)
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	objectStore, err := storage.NewS3Storage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	ocrProvider, err := ocr.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OCR provider: %v", err)
	}

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if cfg.MockServices {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient)
	} else {
		primaryEmailSender = email.NewSender(cfg)
	}
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)

	// Optionally add FileEmailSender if LOG_EMAILS is set
	if cfg.LogEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", cfg.LogEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
			log.Printf("LOG_EMAILS set to '%s', file email logger added.", cfg.LogEmailsPath)
		}
	}

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	// Initialize Services needed by handlers and/or task processor
	emailTemplateService := services.NewEmailTemplateService(repos.EmailTemplates)
	emailService := services.NewEmailService(cfg, emailTemplateService, compositeSender)
	svc := &api.Services{
		Payments:  services.NewPaymentService(cfg, payments.NewStripeGateway(cfg.StripeSecretKey), repos.Profiles),
		Emails:    emailService,
		OCR:       services.NewOCRService(ocrProvider, cfg.OcrImageMaxDimension),
		FacturX:   services.NewFacturXService(objectStore, repos.Invoices),
		ChorusPro: services.NewChorusProService(chorus.NewClient(cfg), repos.Invoices, objectStore, cfg.HTTPTimeout),
	}

	taskProcessor := tasks.NewTaskProcessor(
		cfg,
		emailService,
		services.NewReminderService(repos.Invoices, repos.Profiles, tasks.NewEmailQueue(taskClient), cfg.ReminderMinInterval),
		services.NewQuoteExpiryService(repos.Quotes),
		services.NewCatalogService(scraper.New(cfg.HTTPTimeout, cfg.ScrapeInterval), repos.Products),
	)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(redisClient, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Service API listening on :%s", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		log.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var scheduler *asynq.Scheduler

	log.Printf("Starting application in '%s' mode...", cfg.RunMode)

	var rateLimiter *middleware.RateLimiterMiddleware

	apiMode := func() {
		rateLimiter = middleware.NewRateLimiterMiddleware(cfg)
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           api.SetupRouter(cfg, svc, rateLimiter),
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Main API listening on :%s", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			log.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		srv, mux := tasks.SetupServer(redisClient, taskProcessor)
		backgroundTaskSrv = srv
		if err := backgroundTaskSrv.Start(mux); err != nil {
			log.Fatalf("Background task server error: %v", err)
		}
		log.Println("Background task server started.")

		scheduler, err = tasks.SetupScheduler(redisClient, cfg)
		if err != nil {
			log.Fatalf("Failed to set up scheduler: %v", err)
		}
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
		log.Println("Scheduler started.")
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal: %s. Shutting down gracefully...", sig)
	case <-shutdownChan:
		log.Println("Shutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	// Wait for all server goroutines to finish
	wg.Wait()
	log.Println("Server gracefully stopped")
}
