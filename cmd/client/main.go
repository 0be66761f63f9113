package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobboard-client/config"
	_ "go-jobboard-client/docs" // Important for Swagger
	v1 "go-jobboard-client/internal/delivery/http/v1"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/internal/repository/backend"
	"go-jobboard-client/internal/repository/credential"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/database"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/metrics"
	"go-jobboard-client/pkg/redis"
	"go-jobboard-client/pkg/validation"
)

// @title           Job Board Client Gateway
// @version         1.0
// @description     Session, route guard and synchronized collections for the job board UI.
// @host            localhost:8090
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger and Metrics
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job board client", "port", cfg.Port, "backend", cfg.BackendURL)
	m := metrics.New(true)
	hub := notify.NewHub(cfg.NotificationBuffer, m)

	ctx := context.Background()

	// 3. Setup Redis (optional: rate limits fall back to memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limits", "error", err)
		}
		defer redis.Close()
	}

	// 4. Setup Credential Store
	store, closeStore, err := openCredentialStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open credential store", "driver", cfg.CredentialStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 5. Setup Backend Client
	validate := validation.New()
	client := backend.NewClient(backend.Options{
		BaseURL:  cfg.BackendURL,
		Timeout:  cfg.RequestTimeout,
		Metrics:  m,
		Validate: validate,
	})

	// 6. Setup Session and Workspace
	session := usecase.NewSessionManager(store, backend.NewAuthAPI(client), usecase.SessionOptions{
		Notifier:            hub,
		RejectExpiredTokens: cfg.RejectExpiredTokens,
	})
	client.SetTokenSource(session)

	ws := usecase.NewWorkspace(session, usecase.WorkspaceDeps{
		Jobs:         backend.NewJobAPI(client),
		Applications: backend.NewApplicationAPI(client),
		Interviews:   backend.NewInterviewAPI(client),
		Validate:     validate,
		PageSize:     cfg.PageSize,
		Options: usecase.CollectionOptions{
			Timeout:  cfg.RequestTimeout,
			Notifier: hub,
			Metrics:  m,
		},
	})

	// Requests arriving before this finishes see loading=true.
	go func() {
		if err := session.Restore(ctx); err != nil {
			logger.Log.Warn("Stored session not restored", "error", err)
		}
	}()

	checks := map[string]usecase.HealthCheck{"backend": client.Ping}
	if redis.Client() != nil {
		checks["redis"] = redis.HealthCheck
	}

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		Health:    usecase.NewHealthUsecase(checks, 2*time.Second),
		Session:   session,
		Workspace: ws,
		Hub:       hub,
		Metrics:   m,
		Routes:    usecase.DefaultRoutes,
		Redis:     redis.Client(),
		Config:    cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ws.Abandon()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func openCredentialStore(ctx context.Context, cfg *config.Config) (domain.CredentialStore, func(), error) {
	noop := func() {}

	switch cfg.CredentialStore {
	case config.StoreMemory:
		return credential.NewMemoryStore(), noop, nil
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			return nil, noop, err
		}
		return credential.NewRedisStore(client, cfg.CredentialKey), func() { client.Close() }, nil
	case config.StorePostgres:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, noop, err
		}
		store := credential.NewPostgresStore(pool, cfg.CredentialKey)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return store, pool.Close, nil
	case config.StoreBolt:
		store, err := credential.NewBoltStore(cfg.CredentialStorePath)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}
