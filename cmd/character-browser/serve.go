package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/character-browser/pkg/config"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/Sternrassler/character-browser/pkg/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(logLevel *string) *cobra.Command {
	var (
		addr string
		warm int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the character browser over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("warm") {
				if warm < 0 {
					return fmt.Errorf("--warm must not be negative (got %d)", warm)
				}
				cfg.WarmPages = warm
			}
			logging.Setup(cfg.Logging())
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address; overrides ADDR")
	cmd.Flags().IntVar(&warm, "warm", 0, "Preload the first N pages at startup; overrides WARM_PAGES")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.NewLogger("server")

	s, err := newStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	webCfg := web.DefaultConfig()
	if s.store != nil {
		webCfg.Ready = s.store
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(s.cache, webCfg).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.WarmPages > 0 {
		go func() {
			n, err := pagination.NewWarmer(s.cache, pagination.DefaultWarmConfig()).Warm(ctx, cfg.WarmPages)
			if err != nil {
				logger.Warn().Err(err).Int("warmed", n).Msg("Warmup incomplete")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("endpoint", s.client.Endpoint()).
			Bool("redis", s.store != nil).
			Msg("Starting character browser")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
