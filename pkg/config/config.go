// Package config loads the character browser configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// Config is the process configuration. Command-line flags override the
// values loaded here.
type Config struct {
	GraphQLURL     string        `env:"GRAPHQL_URL"     envDefault:"https://rickandmortyapi.com/graphql" validate:"required,http_url"`
	UserAgent      string        `env:"USER_AGENT"      envDefault:"character-browser/0.1.0"            validate:"required,printascii"`
	Addr           string        `env:"ADDR"            envDefault:":8080"                              validate:"required"`
	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL"       envDefault:"5m"                                 validate:"gt=0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"                                validate:"gt=0"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY"`
	WarmPages      int           `env:"WARM_PAGES"                                                      validate:"gte=0"`
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return name
	})
	return v
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the components would reject.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: invalid value %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}
	if strings.TrimSpace(c.UserAgent) == "" && c.UserAgent != "" {
		errs = append(errs, errors.New("USER_AGENT: must not be blank"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.RedisURL != "" {
		if _, err := c.RedisOptions(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Client returns the GraphQL client configuration.
func (c Config) Client() client.Config {
	return client.Config{
		Endpoint:  c.GraphQLURL,
		UserAgent: c.UserAgent,
		Timeout:   c.RequestTimeout,
	}
}

// Cache returns the query cache configuration.
func (c Config) Cache() cache.Config {
	return cache.Config{RequestTimeout: c.RequestTimeout}
}

// Logging returns the logger configuration writing to stderr.
func (c Config) Logging() logging.Config {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Pretty = c.LogPretty
	cfg.Output = os.Stderr
	return cfg
}

// RedisOptions returns the Redis connection options. REDIS_URL accepts a
// redis:// URL or a bare host:port.
func (c Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL == "" {
		return nil, errors.New("REDIS_URL is not set")
	}
	if !strings.Contains(c.RedisURL, "://") {
		return &redis.Options{Addr: c.RedisURL}, nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	return opts, nil
}
