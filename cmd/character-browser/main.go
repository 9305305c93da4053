// Command character-browser browses Rick and Morty characters page by page,
// either as a web server or as a terminal UI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "character-browser",
		Short: "Browse Rick and Morty characters page by page",
		Long: `Browse the characters of the Rick and Morty GraphQL API.

Configuration is read from the environment (GRAPHQL_URL, USER_AGENT, ADDR,
REDIS_URL, CACHE_TTL, REQUEST_TIMEOUT, LOG_LEVEL, LOG_PRETTY, WARM_PAGES);
flags override it.

Examples:
  character-browser serve --addr :8080 --warm 5
  character-browser browse --page 3`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(newServeCmd(&logLevel), newBrowseCmd(&logLevel))
	return root
}

// loadConfig reads the environment and applies the --log-level override.
func loadConfig(logLevel string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// stack is the data path shared by both front-ends:
// GraphQL client, optional Redis store, query cache.
type stack struct {
	client *client.Client
	redis  *redis.Client
	store  *cache.RedisStore
	cache  *cache.Cache
}

func newStack(ctx context.Context, cfg config.Config) (*stack, error) {
	gql, err := client.New(cfg.Client())
	if err != nil {
		return nil, fmt.Errorf("create GraphQL client: %w", err)
	}

	s := &stack{client: gql}
	var loader cache.Loader = gql

	if cfg.RedisURL != "" {
		opts, err := cfg.RedisOptions()
		if err != nil {
			return nil, err
		}
		s.redis = redis.NewClient(opts)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.redis.Close()
			return nil, fmt.Errorf("connect to Redis at %s: %w", opts.Addr, err)
		}
		log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		s.store = cache.NewRedisStore(s.redis, gql, cfg.CacheTTL)
		loader = s.store
	}

	s.cache = cache.New(loader, cfg.Cache())
	return s, nil
}

func (s *stack) Close() error {
	err := s.cache.Close()
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
