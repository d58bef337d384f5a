package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPPort    int    `env:"HTTP_PORT" env-default:"8080"`
	Env         string `env:"APP_ENV" env-default:"development"`
	APIURL      string `env:"API_URL" env-required:"true"`
	FrontendURL string `env:"FRONTEND_URL"`

	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m"`

	SessionSecret string `env:"SESSION_SECRET" env-default:"change-me-in-production"`
	CookieSecure  bool   `env:"COOKIE_SECURE" env-default:"false"`

	APIMaxRetries       int           `env:"API_MAX_RETRIES" env-default:"3"`
	APIRetryBaseDelay   time.Duration `env:"API_RETRY_BASE_DELAY" env-default:"100ms"`
	APIBreakerThreshold int           `env:"API_BREAKER_THRESHOLD" env-default:"5"`
	APIBreakerReset     time.Duration `env:"API_BREAKER_RESET" env-default:"10s"`

	LoaderIdleTTL time.Duration `env:"LOADER_IDLE_TTL" env-default:"30m"`

	// DisplayTimezone is the IANA zone times are shown and entered in.
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" env-default:"UTC"`
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func New() (*Config, error) {
	return Load("./config/.env")
}

// Load reads path when it exists and falls back to the process environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}
