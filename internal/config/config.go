package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	FrontendURL string

	PostgresDSN string
	MongoURI    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CompletionURL    string
	CompletionAPIKey string
	CompletionModel  string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	MailFrom         string
	ReminderInterval time.Duration

	LogLevel string
	LogDev   bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "8080"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5000"),

		PostgresDSN: getenv("POSTGRES_DSN", ""),
		MongoURI:    getenv("MONGO_URI", ""),
		MongoDB:     getenv("MONGO_DB", "daycast"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "daycast-avatars"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		CompletionURL:    getenv("COMPLETION_URL", "https://api.openai.com"),
		CompletionAPIKey: getenv("COMPLETION_API_KEY", ""),
		CompletionModel:  getenv("COMPLETION_MODEL", "gpt-3.5-turbo"),

		SMTPHost:         getenv("SMTP_HOST", ""),
		SMTPPort:         getint("SMTP_PORT", 587),
		SMTPUser:         getenv("SMTP_USER", ""),
		SMTPPassword:     getenv("SMTP_PASSWORD", ""),
		MailFrom:         getenv("MAIL_FROM", "no-reply@daycast.local"),
		ReminderInterval: getduration("REMINDER_INTERVAL", time.Minute),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogDev:   getenv("LOG_DEV", "") == "1",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
