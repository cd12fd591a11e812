package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/config"
	"github.com/sumire/socialauth/internal/handler"
	"github.com/sumire/socialauth/internal/logger"
	"github.com/sumire/socialauth/internal/provider"
	"github.com/sumire/socialauth/internal/repository"
	"github.com/sumire/socialauth/internal/service"
	"github.com/sumire/socialauth/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("application error")
		os.Exit(1)
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeDB := openStore(ctx, cfg, log)
	defer closeDB()

	client := provider.NewHTTPClient(cfg.OutboundTimeout)
	registry := provider.NewRegistry(
		provider.NewGoogle(provider.Options{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURI:  cfg.Google.RedirectURI,
			HTTPClient:   client,
		}),
		provider.NewGitHub(provider.Options{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURI:  cfg.GitHub.RedirectURI,
			HTTPClient:   client,
		}),
	)
	for _, name := range []string{"google", "github"} {
		p, _ := registry.Get(name)
		if !p.Configured() {
			log.Warn().Str("provider", name).Msg("provider client credentials not set; login disabled")
		}
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiration())
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	if !codec.Configured() {
		log.Warn().Msg("JWT_SECRET_KEY not set; logins will fail with config_error")
	}

	login := service.NewLoginService(registry, codec, store, service.LoginConfig{
		FrontendURL: cfg.Frontend(),
		SuccessPath: cfg.FrontendSuccessPath,
		ErrorPath:   cfg.FrontendErrorPath,
		TokenTTL:    cfg.JWTExpiration(),
	}, log)

	e := handler.NewRouter(handler.Deps{
		Login:       login,
		Store:       store,
		Codec:       codec,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Strs("providers", registry.Configured()).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

// openStore connects the datastore when DATABASE_URL is set. A failed
// connection is logged and the service runs without persistence.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (*service.UserStore, func()) {
	noop := func() {}
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set; users and login events will not be stored")
		return service.NewUserStore(nil, nil, log), noop
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := repository.Open(connectCtx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Error().Err(err).Msg("database unavailable; continuing without persistence")
		return service.NewUserStore(nil, nil, log), noop
	}

	log.Info().Str("dialect", string(db.Dialect)).Msg("database connected")
	return service.NewUserStore(repository.NewUserRepository(db), repository.NewLoginEventRepository(db), log), func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
}
