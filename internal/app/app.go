package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/zhfeng1/OVH/internal/config"
	"github.com/zhfeng1/OVH/internal/domain"
	"github.com/zhfeng1/OVH/internal/middleware"
	"github.com/zhfeng1/OVH/internal/module/account"
	"github.com/zhfeng1/OVH/internal/module/auth"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine     *gin.Engine
	db         *gorm.DB
	logger     *logger.Logger
	cfg        *config.Config
	jwtService jwt.Service
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

var newJWTService = func(secret string) (jwt.Service, error) {
	return jwt.NewService(jwt.WithSecretKey(secret))
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, database, domain repositories, services, handlers,
// middleware, and routes. The returned App serves via Run or exposes its
// router via Engine for one-shot uses.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database with connection pool configuration.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := db.AutoMigrate(&domain.Account{}, &domain.EmailEvent{}, &domain.UsageRecord{}, &domain.User{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. Manual dependency injection: repository → service → handler → module.
	accountRepo := account.NewAccountRepository(db)
	accountSvc := account.NewAccountService(accountRepo)
	accountHandler := account.NewAccountHandler(accountSvc)
	modules := []Module{account.NewModule(accountHandler)}

	// 5. Auth services and middleware, only when enabled.
	var jwtSvc jwt.Service
	var authMW gin.HandlerFunc
	if cfg.Auth.Enabled {
		expiry, err := time.ParseDuration(strings.TrimSpace(cfg.Auth.TokenExpiry))
		if err != nil {
			return nil, fmt.Errorf("parse auth.token_expiry: %w", err)
		}

		jwtSvc, err = newJWTService(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("setup jwt service: %w", err)
		}
		defer func() {
			if success {
				return
			}
			jwtSvc.Close()
		}()

		userRepo := auth.NewUserRepository(db)
		authSvc := auth.NewService(jwtSvc, userRepo, expiry)
		modules = append(modules, auth.NewModule(auth.NewHandler(authSvc)))

		authMW = middleware.Auth(jwtSvc, middleware.AuthConfig{
			PublicPaths: cfg.Auth.PublicPaths,
		})
	}

	// 6. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	// In release mode, when no allowlist is configured, default to deny
	// cross-origin requests.
	corsConfig := resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	)

	// 7. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: modules,
		DB:      db,
		Auth:    authMW,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:     engine,
		db:         db,
		logger:     log,
		cfg:        cfg,
		jwtService: jwtSvc,
	}, nil
}

// Engine returns the app's router for serving or inspection.
func (a *App) Engine() *gin.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

func resolveCORSConfig(mode string, corsCfg *config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if corsCfg == nil {
		if mode == gin.ReleaseMode {
			out.AllowOrigins = []string{}
		}
		return out
	}

	if len(corsCfg.AllowOrigins) > 0 {
		out.AllowOrigins = corsCfg.AllowOrigins
	} else if mode == gin.ReleaseMode {
		out.AllowOrigins = []string{}
	}

	if len(corsCfg.AllowMethods) > 0 {
		out.AllowMethods = corsCfg.AllowMethods
	}
	if len(corsCfg.AllowHeaders) > 0 {
		out.AllowHeaders = corsCfg.AllowHeaders
	}
	out.AllowCredentials = corsCfg.AllowCredentials

	// Config carries a Go duration; the middleware wants whole seconds.
	if ma := strings.TrimSpace(corsCfg.MaxAge); ma != "" {
		if d, err := time.ParseDuration(ma); err == nil && d > 0 {
			out.MaxAge = strconv.FormatInt(int64(d.Seconds()), 10)
		}
	}

	return out
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and then releases
// the app's resources.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		a.logInfo("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		a.logInfo("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logError("server shutdown error", slog.Any("error", err))
		}
	}

	a.logInfo("server stopped")
	a.Close()

	if runErr != nil {
		return runErr
	}

	return nil
}

// Close releases the app's resources without serving: the JWT service,
// the database connection, and finally the logger. Safe to call on a
// partially constructed App; used by one-shot consumers of Engine and
// by Run after shutdown.
func (a *App) Close() {
	if a == nil {
		return
	}

	if a.jwtService != nil {
		a.jwtService.Close()
		a.jwtService = nil
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logError("database close error", slog.Any("error", err))
			} else {
				a.logInfo("database connection closed")
			}
		}
		a.db = nil
	}

	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}

func (a *App) logInfo(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
		return
	}
	slog.Info(msg, args...)
}

func (a *App) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
		return
	}
	slog.Error(msg, args...)
}
