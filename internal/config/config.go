package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// Every field can be set from the yaml file or overridden by its env var.
type Config struct {
	// Environment selects the logger flavour (development or production)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" env-default:"" yaml:"logLevel"`

	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"30s" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"1m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds a whole lookup, both network calls included
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	Resolver struct {
		// BaseURL of the company autocomplete API
		BaseURL string `env:"RESOLVER_BASE_URL" env-default:"https://autocomplete.clearbit.com" yaml:"baseURL"`
		// Timeout bounds a single suggestion request
		Timeout time.Duration `env:"RESOLVER_TIMEOUT" env-default:"5s" yaml:"timeout"`
		// MaxAttempts counts the first request; 1 disables retries
		MaxAttempts uint          `env:"RESOLVER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		RetryDelay  time.Duration `env:"RESOLVER_RETRY_DELAY" env-default:"200ms" yaml:"retryDelay"`
		UserAgent   string        `env:"RESOLVER_USER_AGENT" env-default:"contactfinder/1.0" yaml:"userAgent"`
	} `yaml:"resolver"`

	Fetcher struct {
		Timeout      time.Duration `env:"FETCHER_TIMEOUT" env-default:"10s" yaml:"timeout"`
		MaxRedirects int           `env:"FETCHER_MAX_REDIRECTS" env-default:"5" yaml:"maxRedirects"`
		MaxBodyBytes int64         `env:"FETCHER_MAX_BODY_BYTES" env-default:"5242880" yaml:"maxBodyBytes"`
		// UserAgent defaults to a desktop browser string when empty
		UserAgent string `env:"FETCHER_USER_AGENT" env-default:"" yaml:"userAgent"`
		// InsecureSkipVerify disables TLS certificate verification of fetched sites
		InsecureSkipVerify bool `env:"FETCHER_INSECURE_SKIP_VERIFY" env-default:"false" yaml:"insecureSkipVerify"`
	} `yaml:"fetcher"`

	Pipeline struct {
		// FetchAttempts counts the first fetch; only unreachable and timed out fetches are repeated
		FetchAttempts   uint          `env:"PIPELINE_FETCH_ATTEMPTS" env-default:"1" yaml:"fetchAttempts"`
		FetchRetryDelay time.Duration `env:"PIPELINE_FETCH_RETRY_DELAY" env-default:"500ms" yaml:"fetchRetryDelay"`
	} `yaml:"pipeline"`

	Tracing struct {
		// Enabled writes finished lookup spans to the logger
		Enabled bool `env:"TRACING_ENABLED" env-default:"false" yaml:"enabled"`
		// SampleRatio is the fraction of new traces kept, between 0 and 1
		SampleRatio float64 `env:"TRACING_SAMPLE_RATIO" env-default:"1" yaml:"sampleRatio"`
	} `yaml:"tracing"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// A missing file is not an error: the config is then read from the environment alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
