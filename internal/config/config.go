package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	dbUserEmptyError    = errors.New("DB User is Empty")
	dbNameEmptyError    = errors.New("DB Name is Empty")
	jwtSecretEmptyError = errors.New("JWT secret is Empty")
	envLoadError        = errors.New(".env load Error")
)

type AppConfig struct {
	Env                     string
	Port                    string
	RequestTimeout          time.Duration
	CORSOrigin              string
	RateLimitPerMinute      int
	LeaderboardDefaultLimit int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	Password string
	User     string
	URL      string
}

type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LCSConfig struct {
	URL     string
	Timeout time.Duration
}

type RedisConfig struct {
	// пустой URL отключает кеш профилей
	URL             string
	ProfileCacheTTL time.Duration
}

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	LCS      LCSConfig
	Redis    RedisConfig
}

func LoadConfig() (*Config, error) {
	// .env необязателен, переменные окружения могут прийти из контейнера
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", envLoadError, err)
	}

	c := &Config{
		App: AppConfig{
			Env:                     getEnv("APP_ENV", "dev"),
			Port:                    getEnv("APP_PORT", "8080"),
			RequestTimeout:          getDuration("REQUEST_TIMEOUT", 5*time.Second),
			CORSOrigin:              getEnv("CORS_ORIGIN", "*"),
			RateLimitPerMinute:      getInt("RATE_LIMIT_PER_MINUTE", 200),
			LeaderboardDefaultLimit: getInt("LEADERBOARD_DEFAULT_LIMIT", 5),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			Name:     getEnv("DATABASE_NAME", "postgres"),
			Password: getEnv("DATABASE_PASSWORD", "postgres"),
			User:     getEnv("DATABASE_USER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "mentorq"),
			AccessTTL:  getDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		LCS: LCSConfig{
			URL:     getEnv("LCS_URL", "https://api.hackru.org/dev"),
			Timeout: getDuration("LCS_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:             getEnv("REDIS_URL", ""),
			ProfileCacheTTL: getDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		},
	}
	err := makeDbUrl(c)
	if err != nil {
		return nil, err
	}

	if c.Auth.JWTSecret == "" {
		return nil, jwtSecretEmptyError
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func makeDbUrl(cfg *Config) error {
	if cfg.Database.URL == "" {
		if cfg.Database.User == "" {
			return dbUserEmptyError
		}
		if cfg.Database.Name == "" {
			return dbNameEmptyError
		}
		cfg.Database.URL = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
		)
	}
	return nil
}
