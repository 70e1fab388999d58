package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nuvie/records/internal/config"
	"github.com/nuvie/records/internal/domain/patient"
	"github.com/nuvie/records/internal/domain/user"
	"github.com/nuvie/records/internal/platform/auth"
	"github.com/nuvie/records/internal/platform/db"
	"github.com/nuvie/records/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, logger, err := bootstrap(os.Stdout)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	revocations, closer, err := newRevocationStore(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.RedisURL != "" {
		logger.Info().Msg("token revocation backed by redis")
	}

	e := newServer(cfg, logger, pool, revocations)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware, handlers and health probes. It does not touch
// the pool until a request needs it.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, revocations auth.RevocationStore) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	tokens := auth.NewTokenIssuer(cfg.SigningKey(), time.Duration(cfg.TokenExpireMinutes)*time.Minute)
	userSvc := user.NewService(user.NewRepo(pool), tokens, revocations)
	patientSvc := patient.NewService(patient.NewRepo(pool))

	api := e.Group("/api/v1")
	// Sign-up and login are the unauthenticated entry points, so they are
	// throttled per client.
	public := api.Group("", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.AuthRateLimit,
		BurstSize:         cfg.AuthRateBurst,
	}))
	protected := api.Group("", auth.JWTMiddleware(auth.JWTConfig{
		Issuer:      tokens,
		Revocations: revocations,
		Subjects:    userSvc,
	}))

	user.NewHandler(userSvc).RegisterRoutes(public, protected)
	patient.NewHandler(patientSvc).RegisterRoutes(protected)

	e.GET("/health", db.ServiceHandler(cfg.ServiceName))
	e.GET("/health/db", db.HealthHandler(pool))
	return e
}

// newRevocationStore uses redis when a URL is configured so logouts hold
// across replicas, and an in-process store otherwise.
func newRevocationStore(ctx context.Context, redisURL string) (auth.RevocationStore, io.Closer, error) {
	if redisURL == "" {
		store := auth.NewMemoryRevocationStore(5 * time.Minute)
		return store, store, nil
	}
	client, err := auth.DialRedis(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	store := auth.NewRedisRevocationStore(client)
	return store, store, nil
}
