package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Antony-Mwangi/CORN-CAST/internal/backend"
	"github.com/Antony-Mwangi/CORN-CAST/internal/config"
	"github.com/Antony-Mwangi/CORN-CAST/internal/httpserver"
	"github.com/Antony-Mwangi/CORN-CAST/internal/observability"
	"github.com/Antony-Mwangi/CORN-CAST/internal/session"
	"github.com/Antony-Mwangi/CORN-CAST/internal/tokenstore"
)

const shutdownTimeout = 10 * time.Second

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Session.Ephemeral {
		logger.Warn("session keys generated for this process; sessions will not survive a restart")
	}

	api, err := backend.New(cfg.API.BaseURL, backend.WithTimeout(cfg.API.Timeout), backend.WithUserAgent("corncast-web/"+Version))
	if err != nil {
		return err
	}

	tokens, err := tokenstore.New(ctx, tokenStoreConfig(cfg.TokenStore))
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	defer func() {
		if err := tokens.Close(); err != nil {
			logger.Warn("token store close failed", zap.Error(err))
		}
	}()

	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:        cfg.Server.Addr,
		Logger:         logger,
		Backend:        api,
		Tokens:         tokens,
		Sessions:       sessions,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		HandlerTimeout: cfg.Server.HandlerTimeout,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("web server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("environment", cfg.Environment),
		zap.String("api", cfg.API.BaseURL),
		zap.String("token_store", cfg.TokenStore.Driver),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("web server stopped")
	return nil
}

func tokenStoreConfig(cfg config.TokenStoreConfig) tokenstore.Config {
	out := tokenstore.Config{
		Driver: cfg.Driver,
		TTL:    cfg.TTL,
	}
	if cfg.Driver == tokenstore.DriverRedis {
		out.Redis = &tokenstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}
	}
	return out
}
