package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderOpenAISDK = "openai-sdk"

	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// Settings is read once at startup and never mutated afterwards.
type Settings struct {
	AppEnv   string
	LogLevel string

	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration

	MaxRetries int
	BatchSize  int
	RetryBase  time.Duration
	GroupDelay time.Duration
	JitterMax  time.Duration

	ProductStore  string
	DatabaseURL   string
	ProductsTable string
	AWSEndpoint   string
	AWSRegion     string

	KafkaBroker   string
	KafkaGroupID  string
	ValkeyAddress string
	ValkeyPass    string
	ValkeyTLS     bool

	MetricsAddr string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Warn("[Config] Invalid integer value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		slog.Warn("[Config] Invalid duration value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", defaultValue))
		return defaultValue
	}
	return v
}

// Load builds Settings from the environment. Call LoadEnv first when a .env file should be honoured.
func Load() Settings {
	s := Settings{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Provider:       getEnv("REVIEWSEED_PROVIDER", ProviderOpenAI),
		Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		BaseURL:        os.Getenv("OPENAI_BASE_URL"),
		RequestTimeout: getEnvDuration("OPENAI_REQUEST_TIMEOUT", 60*time.Second),

		MaxRetries: getEnvInt("REVIEWSEED_MAX_RETRIES", 2),
		BatchSize:  getEnvInt("REVIEWSEED_BATCH_SIZE", 5),
		RetryBase:  getEnvDuration("REVIEWSEED_RETRY_BASE", time.Second),
		GroupDelay: getEnvDuration("REVIEWSEED_GROUP_DELAY", time.Second),
		JitterMax:  getEnvDuration("REVIEWSEED_JITTER_MAX", 500*time.Millisecond),

		ProductStore:  getEnv("PRODUCT_STORE", StorePostgres),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ProductsTable: getEnv("DYNAMODB_PRODUCTS_TABLE", "Products"),
		AWSEndpoint:   os.Getenv("AWS_ENDPOINT"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),

		KafkaBroker:   getEnv("KAFKA_BROKER", "localhost:29092"),
		KafkaGroupID:  getEnv("KAFKA_CONSUMER_GROUP_ID", "reviewseed-consumer-group"),
		ValkeyAddress: os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPass:    os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:     os.Getenv("VALKEY_TLS") == "true",

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}

	if s.BatchSize == 0 {
		s.BatchSize = 1
	}

	return s
}
