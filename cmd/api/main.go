// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kallan/backend/internal/admin"
	"github.com/kallan/backend/internal/auth"
	"github.com/kallan/backend/internal/config"
	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/fikapinne"
	"github.com/kallan/backend/internal/health"
	"github.com/kallan/backend/internal/middleware"
	"github.com/kallan/backend/internal/punishment"
	"github.com/kallan/backend/internal/push"
	"github.com/kallan/backend/internal/server"
	"github.com/kallan/backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a session key pair and print VAPID keys, then exit")
	flag.Parse()

	if *genKeys {
		if err := generateKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	signer, err := auth.NewCookieSigner(cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session signer initialized",
		"algorithm", "ES256",
		"key_id", signer.KeyID(),
	)

	avatars, err := user.NewLocalAvatarStore(cfg.Media.Dir, cfg.Media.URLPrefix)
	if err != nil {
		return err
	}

	txManager := core.NewTxManager(db.DB)
	loc := cfg.Location()

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, avatars, cfg.Media.MaxAvatarBytes)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(redis.Client)
	authSvc := auth.NewService(authRepo, signer, userSvc, cfg.Session.TTL)
	authHandler := auth.NewHandler(authSvc, auth.CookieConfig{
		SessionName: cfg.Session.CookieName,
		CSRFName:    cfg.CSRF.CookieName,
		Secure:      cfg.Session.Secure,
	})

	pushRepo := push.NewRepository(db.DB)
	dispatcher := push.NewDispatcher(
		pushRepo,
		push.NewWebPushSender(cfg.Push),
		cfg.Push.Enabled(),
	)
	if !cfg.Push.Enabled() {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}
	pushSvc := push.NewService(pushRepo, cfg.Push.VAPIDPublicKey)
	pushHandler := push.NewHandler(pushSvc)

	punishmentSvc := punishment.NewService(punishment.ServiceConfig{
		Repo:     punishment.NewRepository(db.DB),
		Users:    userSvc,
		Tx:       txManager,
		Notifier: dispatcher,
		Location: loc,
	})
	punishmentHandler := punishment.NewHandler(punishmentSvc)

	fikapinneSvc := fikapinne.NewService(fikapinne.ServiceConfig{
		Repo:     fikapinne.NewRepository(db.DB),
		Users:    userSvc,
		Tx:       txManager,
		Notifier: dispatcher,
		Location: loc,
	})
	fikapinneHandler := fikapinne.NewHandler(fikapinneSvc)

	healthHandler := health.NewHandler(cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Counters: map[string]admin.Counter{
			"pending_punishments": punishmentSvc.CountPending,
			"push_subscriptions":  pushSvc.CountSubscriptions,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.LoginRequests,
			cfg.RateLimit.LoginBurst,
		),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	}).Handler

	csrf := middleware.CSRF(cfg.CSRF.CookieName, cfg.CSRF.HeaderName)
	authenticator := middleware.Authenticator(authSvc, cfg.Session.CookieName)
	active := middleware.RequireNoPasswordReset
	staffOnly := middleware.RequireStaff

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, csrf, authenticator, loginLimiter)

		r.Group(func(r chi.Router) {
			r.Use(csrf)

			userHandler.RegisterRoutes(r, authenticator, active)
			userHandler.RegisterAdminRoutes(r, authenticator, active, staffOnly)
			adminHandler.RegisterRoutes(r, authenticator, active, staffOnly)
			punishmentHandler.RegisterRoutes(r, authenticator, active)
			fikapinneHandler.RegisterRoutes(r, authenticator, active)
			pushHandler.RegisterRoutes(r, authenticator, active)
		})
	})

	mediaPrefix := strings.TrimSuffix(cfg.Media.URLPrefix, "/")
	router.Handle(mediaPrefix+"/*", http.StripPrefix(
		mediaPrefix+"/",
		http.FileServer(http.Dir(avatars.Dir())),
	))

	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// generateKeys writes the session signing keys to the configured paths and
// prints a fresh VAPID pair for the environment.
func generateKeys(configPath string) error {
	privPath, pubPath := "keys/private.pem", "keys/public.pem"
	if cfg, err := config.Load(configPath); err == nil {
		privPath, pubPath = cfg.Session.PrivateKeyPath, cfg.Session.PublicKeyPath
	}

	if err := auth.GenerateKeyPair(privPath, pubPath); err != nil {
		return err
	}

	public, private, err := push.GenerateVAPIDKeys()
	if err != nil {
		return err
	}

	fmt.Printf("session keys written to %s and %s\n", privPath, pubPath)
	fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
