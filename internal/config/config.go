package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devAuthSecret = "dev-secret-change-in-production"

type Config struct {
	Port           string
	Env            string
	BaseURL        string
	TrustedOrigins []string

	Database DatabaseConfig
	Redis    RedisConfig
	TMDB     TMDBConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TMDBConfig struct {
	APIToken string
	BaseURL  string
	Timeout  time.Duration
}

// AuthConfig holds session signing and OAuth client settings.
type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	GitHub     OAuthClient
	Google     OAuthClient
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether both halves of the client credential pair are set.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		BaseURL:        strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		TrustedOrigins: getEnvList("TRUSTED_ORIGINS"),
		Database: DatabaseConfig{
			DSN:          getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/marquee?parseTime=true"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		TMDB: TMDBConfig{
			APIToken: getEnv("TMDB_API_TOKEN", ""),
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Timeout:  getEnvAsDuration("TMDB_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Secret:     getEnv("AUTH_SECRET", devAuthSecret),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			GitHub: OAuthClient{
				ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
				ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			},
			Google: OAuthClient{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			File:   getEnv("LOG_FILE", ""),
		},
	}
}

// Validate reports every missing or unsafe setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.TMDB.APIToken == "" {
		errs = append(errs, errors.New("TMDB_API_TOKEN is required"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if c.Env == "production" && (c.Auth.Secret == "" || c.Auth.Secret == devAuthSecret) {
		errs = append(errs, errors.New("AUTH_SECRET must be set in production environment"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Auth.SessionTTL))
	}
	for name, client := range map[string]OAuthClient{"GITHUB": c.Auth.GitHub, "GOOGLE": c.Auth.Google} {
		if (client.ClientID == "") != (client.ClientSecret == "") {
			errs = append(errs, fmt.Errorf("%s_CLIENT_ID and %s_CLIENT_SECRET must be set together", name, name))
		}
	}

	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
