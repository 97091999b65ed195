package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV"`
	Port         int    `envconfig:"PORT" default:"8080"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`

	DB struct {
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT" default:"5432"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
	}
	DynamoDB struct {
		Region             string `envconfig:"DDB_REGION"`
		Endpoint           string `envconfig:"DDB_ENDPOINT"`
		AccessKey          string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey          string `envconfig:"DDB_SECRET_KEY"`
		SessionToken       string `envconfig:"DDB_SESSION_TOKEN"`
		LoginAttemptsTable string `envconfig:"DDB_LOGIN_ATTEMPTS_TABLE"`
	}
	Auth struct {
		JWTSecret          string `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL           int    `envconfig:"AUTH_TOKEN_TTL" default:"60"`
		RefreshTTL         int    `envconfig:"AUTH_REFRESH_TTL" default:"10080"`
		CookieSecure       bool   `envconfig:"AUTH_COOKIE_SECURE"`
		GoogleClientID     string `envconfig:"AUTH_GOOGLE_CLIENT_ID"`
		GoogleClientSecret string `envconfig:"AUTH_GOOGLE_CLIENT_SECRET"`
		GoogleRedirectURL  string `envconfig:"AUTH_GOOGLE_REDIRECT_URL"`
	}
	OMDb struct {
		URL     string        `envconfig:"OMDB_URL" default:"https://www.omdbapi.com/"`
		APIKey  string        `envconfig:"OMDB_API_KEY"`
		Timeout time.Duration `envconfig:"OMDB_TIMEOUT" default:"5s"`
	}
	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB"`
		CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"1h"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

// Origins splits AllowOrigins on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTL) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTL) * time.Minute
}
