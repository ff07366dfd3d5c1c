package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultRetentionDays     = 2
	DefaultResumeRetries     = 6
	DefaultResumeRetryDelay  = 500 * time.Millisecond
	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = time.Minute
)

// Settings is the process configuration, read once from the environment.
type Settings struct {
	Port        string
	DatabaseDSN string
	AutoMigrate bool

	JWTSecret           string
	AdminMigrationToken string
	CronSecret          string

	RetentionDays int

	ResumeRetries    int
	ResumeRetryDelay time.Duration

	RedisURL          string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	RabbitMQURI string

	AllowedOrigins string
	CookieDomain   string
}

// RetentionWindow is the single source of truth for attempt retention.
func (s Settings) RetentionWindow() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// LoadSettings reads a .env file if present and then the environment.
func LoadSettings() Settings {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.WithError(err).Warn("Could not load .env file")
	}

	return Settings{
		Port:                getEnv("PORT", "8080"),
		DatabaseDSN:         os.Getenv("DATABASE_DSN"),
		AutoMigrate:         getBool("AUTO_MIGRATE", false),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AdminMigrationToken: os.Getenv("ADMIN_MIGRATION_TOKEN"),
		CronSecret:          os.Getenv("CRON_SECRET"),
		RetentionDays:       getPositiveInt("RETENTION_DAYS", DefaultRetentionDays),
		ResumeRetries:       getPositiveInt("QUIZ_RESUME_RETRIES", DefaultResumeRetries),
		ResumeRetryDelay:    getDuration("QUIZ_RESUME_RETRY_DELAY", DefaultResumeRetryDelay),
		RedisURL:            os.Getenv("REDIS_URL"),
		RateLimitRequests:   getPositiveInt("RATE_LIMIT_REQUESTS", DefaultRateLimitRequests),
		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
		RabbitMQURI:         os.Getenv("RABBITMQ_URI"),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", "*"),
		CookieDomain:        os.Getenv("COOKIE_DOMAIN"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getPositiveInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
