package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"

	OcrProviderOcrSpace = "ocrspace"
	OcrProviderAzure    = "azure"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Row store
	StoreDriver string
	MongoURI    string
	MongoDbName string
	PostgresDSN string
	AutoMigrate bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Supabase auth
	SupabaseURL       string
	SupabaseJwtSecret string
	JwtAudience       string

	// Server
	ApiPort        string
	ServiceApiPort string
	HTTPTimeout    time.Duration

	// Base64 uploads of scanned invoices travel in JSON bodies
	MaxRequestBodyBytes int64

	// Stripe
	StripeSecretKey       string
	PlatformFeePercent    float64
	StripeConnectCountry  string
	OnboardingFallbackURL string

	// Email
	ResendApiKey     string
	EmailFromAddress string
	MockServices     bool
	LogEmailsPath    string

	// OCR
	OcrProvider          string
	OcrSpaceApiKey       string
	OcrSpaceURL          string
	OcrLanguage          string
	AzureVisionEndpoint  string
	AzureVisionKey       string
	OcrImageMaxDimension int

	// Object storage (S3 compatible)
	StorageEndpoint        string
	StorageRegion          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageBucket          string
	StoragePublicBaseURL   string

	// Chorus Pro
	ChorusProApiURL       string
	ChorusProTokenURL     string
	ChorusProClientID     string
	ChorusProClientSecret string

	// Scheduled jobs
	ReminderCron        string
	QuoteExpiryCron     string
	CatalogScrapeCron   string
	ReminderMinInterval time.Duration
	PointPCatalogURL    string
	CedeoBaseURL        string
	ScrapeInterval      time.Duration

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMongo))
	switch cfg.StoreDriver {
	case StoreDriverMongo:
		cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
		if err != nil {
			return nil, err
		}
		cfg.MongoDbName = getEnv("MONGO_DB_NAME", "plombipro")
	case StoreDriverPostgres:
		cfg.PostgresDSN, err = getRequiredEnv("POSTGRES_DSN")
		if err != nil {
			return nil, err
		}
		cfg.AutoMigrate = getEnv("POSTGRES_AUTO_MIGRATE", "") == "true"
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %s", cfg.StoreDriver)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	cfg.SupabaseURL = strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	cfg.SupabaseJwtSecret, err = getRequiredEnv("SUPABASE_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.JwtAudience = getEnv("JWT_AUDIENCE", "authenticated")

	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")

	cfg.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	cfg.StripeConnectCountry = getEnv("STRIPE_CONNECT_COUNTRY", "FR")
	cfg.OnboardingFallbackURL = getEnv("ONBOARDING_FALLBACK_URL", cfg.SupabaseURL+"/auth/v1/callback")

	cfg.ResendApiKey = getEnv("RESEND_API_KEY", "")
	cfg.EmailFromAddress = getEnv("EMAIL_FROM_ADDRESS", "facturation@plombipro.fr")
	cfg.MockServices = getEnv("MOCK_SERVICES", "") == "true"
	cfg.LogEmailsPath = getEnv("LOG_EMAILS", "")

	cfg.OcrProvider = strings.ToLower(getEnv("OCR_PROVIDER", OcrProviderOcrSpace))
	if cfg.OcrProvider != OcrProviderOcrSpace && cfg.OcrProvider != OcrProviderAzure {
		return nil, fmt.Errorf("invalid OCR_PROVIDER: %s", cfg.OcrProvider)
	}
	cfg.OcrSpaceApiKey = getEnv("OCR_SPACE_API_KEY", "")
	cfg.OcrSpaceURL = getEnv("OCR_SPACE_URL", "https://api.ocr.space/parse/image")
	cfg.OcrLanguage = getEnv("OCR_LANGUAGE", "fre")
	cfg.AzureVisionEndpoint = getEnv("AZURE_VISION_ENDPOINT", "")
	cfg.AzureVisionKey = getEnv("AZURE_VISION_KEY", "")

	cfg.StorageEndpoint = getEnv("STORAGE_S3_ENDPOINT", "")
	if cfg.StorageEndpoint == "" && cfg.SupabaseURL != "" {
		cfg.StorageEndpoint = cfg.SupabaseURL + "/storage/v1/s3"
	}
	cfg.StorageRegion = getEnv("STORAGE_S3_REGION", "eu-west-3")
	cfg.StorageAccessKeyID = getEnv("STORAGE_S3_ACCESS_KEY_ID", "")
	cfg.StorageSecretAccessKey = getEnv("STORAGE_S3_SECRET_ACCESS_KEY", "")
	cfg.StorageBucket = getEnv("STORAGE_BUCKET", "documents")
	cfg.StoragePublicBaseURL = strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", cfg.SupabaseURL+"/storage/v1/object/public"), "/")

	cfg.ChorusProApiURL = strings.TrimRight(getEnv("CHORUS_PRO_API_URL", "https://api.piste.gouv.fr/cpro/factures/v1"), "/")
	cfg.ChorusProTokenURL = getEnv("CHORUS_PRO_TOKEN_URL", "https://oauth.piste.gouv.fr/api/oauth/token")
	cfg.ChorusProClientID = getEnv("CHORUS_PRO_CLIENT_ID", "")
	cfg.ChorusProClientSecret = getEnv("CHORUS_PRO_CLIENT_SECRET", "")

	cfg.ReminderCron = getEnv("REMINDER_CRON", "0 8 * * *")
	cfg.QuoteExpiryCron = getEnv("QUOTE_EXPIRY_CRON", "0 1 * * *")
	cfg.CatalogScrapeCron = getEnv("CATALOG_SCRAPE_CRON", "0 3 * * 1")
	cfg.PointPCatalogURL = getEnv("POINTP_CATALOG_URL", "https://www.pointp.fr/c/gros-oeuvre/plancher-hourdis-poutrelles-entrevous/p/10102")
	cfg.CedeoBaseURL = getEnv("CEDEO_BASE_URL", "https://www.cedeo.fr")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	httpTimeoutSeconds, err := strconv.ParseInt(getEnv("HTTP_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.HTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second

	maxBodyMB, err := strconv.ParseInt(getEnv("MAX_REQUEST_BODY_MB", "20"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_REQUEST_BODY_MB: %w", err)
	}
	cfg.MaxRequestBodyBytes = maxBodyMB << 20

	cfg.PlatformFeePercent, err = strconv.ParseFloat(getEnv("PLATFORM_FEE_PERCENT", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_FEE_PERCENT: %w", err)
	}

	cfg.OcrImageMaxDimension, err = strconv.Atoi(getEnv("OCR_IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid OCR_IMAGE_MAX_DIMENSION: %w", err)
	}

	reminderIntervalDays, err := strconv.Atoi(getEnv("REMINDER_MIN_INTERVAL_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_MIN_INTERVAL_DAYS: %w", err)
	}
	cfg.ReminderMinInterval = time.Duration(reminderIntervalDays) * 24 * time.Hour

	scrapeIntervalSeconds, err := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_INTERVAL_SECONDS: %w", err)
	}
	cfg.ScrapeInterval = time.Duration(scrapeIntervalSeconds) * time.Second

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
