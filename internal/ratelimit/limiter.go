package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	httprateredis "github.com/go-chi/httprate-redis"
	"github.com/redis/go-redis/v9"

	"github.com/sechenov-plus/quiz-lambda/internal/auth"
	"github.com/sechenov-plus/quiz-lambda/internal/config"
)

const redisKeyPrefix = "quiz:ratelimit"

type Config struct {
	Requests int
	Window   time.Duration
	// RedisURL shares counters across instances. Empty keeps them in memory.
	RedisURL string
}

// Limiter is a sliding window limiter for the attempt start and submit
// routes.
type Limiter struct {
	handler func(http.Handler) http.Handler
	client  *redis.Client
}

func New(cfg Config) (*Limiter, error) {
	if cfg.Requests <= 0 {
		cfg.Requests = config.DefaultRateLimitRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = config.DefaultRateLimitWindow
	}

	l := &Limiter{}
	options := []httprate.Option{
		httprate.WithKeyFuncs(KeyByUser),
		httprate.WithLimitHandler(tooManyRequests),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		l.client = redis.NewClient(opts)
		options = append(options, httprateredis.WithRedisLimitCounter(&httprateredis.Config{
			Client:    l.client,
			PrefixKey: redisKeyPrefix,
			OnError: func(err error) {
				config.Logger.WithError(err).Warn("Rate limit counter unavailable")
			},
			OnFallbackChange: func(activated bool) {
				if activated {
					config.Logger.Warn("Rate limiter switched to in-memory counters")
					return
				}
				config.Logger.Info("Rate limiter back on redis counters")
			},
		}))
	}

	l.handler = httprate.Limit(cfg.Requests, cfg.Window, options...)
	return l, nil
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return l.handler(next)
}

func (l *Limiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

// KeyByUser buckets authenticated requests per user and everything else per
// client address. RemoteAddr is already rewritten by chi's RealIP.
func KeyByUser(r *http.Request) (string, error) {
	if claims, err := auth.GetUserClaimsFromContext(r.Context()); err == nil && claims.UserID != "" {
		return "user:" + claims.UserID, nil
	}
	ip, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	config.WithContext(r.Context()).Warn("Rate limit exceeded")
	config.Error(w, http.StatusTooManyRequests, "too many requests")
}
