package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "user_management/docs"
	"user_management/internal/config"
	"user_management/internal/handlers"
	"user_management/internal/logger"
	"user_management/internal/observability"
	"user_management/internal/repository"
	"user_management/internal/repository/db"
	"user_management/internal/server"
	"user_management/internal/service"

	"github.com/gin-gonic/gin"
)

// @title                       User Management API
// @version                     1.0
// @description                 Create, list, update and delete user accounts behind a JWT gate.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := loadConfig()

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()
	log.Infow("config loaded", "config", cfg.String())

	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracer := initTracing(cfg, log)

	// open DB
	conn, dialect, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn, dialect)
	services := service.NewService(repos, service.AuthConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
	})
	apiHandler := handlers.NewHandler(services, log, handlerOptions(cfg, services))

	// start HTTP server
	srv := server.New(cfg.Server.Port, apiHandler.InitRoutes(), server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Server.Port, log)

	// graceful shutdown
	waitForShutdown(srv, shutdownTracer, cfg.Server.ShutdownTimeout, log)
}

func loadConfig() *config.Config {
	path, err := config.PathFromArgs("api", os.Args[1:])
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("invalid flags", "err", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}
	return cfg
}

// initTracing installs the OTLP exporter when enabled. The returned func is never nil.
func initTracing(cfg *config.Config, log *logger.Logger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Tracing.Enabled {
		return noop
	}
	shutdown, err := observability.InitTracer(context.Background(), cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		log.Errorw("tracing disabled", "endpoint", cfg.Tracing.Endpoint, "err", err)
		return noop
	}
	log.Infow("tracing enabled", "endpoint", cfg.Tracing.Endpoint, "service", cfg.Tracing.ServiceName)
	return shutdown
}

func handlerOptions(cfg *config.Config, services *service.Service) handlers.Options {
	var opts handlers.Options
	if cfg.Metrics.Enabled {
		prom := observability.NewProm()
		if feed, ok := services.Feed.(observability.FeedStats); ok {
			prom.RegisterFeed(feed)
		}
		opts.Metrics = prom
	}
	if cfg.Tracing.Enabled {
		opts.TraceName = cfg.Tracing.ServiceName
	}
	return opts
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, shutdownTracer func(context.Context) error, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Errorw("tracer shutdown failed", "err", err)
	}
}
