package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/genomebank/searchgw/internal/config"
	logpkg "github.com/genomebank/searchgw/internal/logger"
	"github.com/genomebank/searchgw/internal/metrics"
	chiTransport "github.com/genomebank/searchgw/internal/transport/chi"
	"github.com/genomebank/searchgw/internal/transport/elastic"
	bulkuc "github.com/genomebank/searchgw/internal/usecase/bulk"
	entryuc "github.com/genomebank/searchgw/internal/usecase/entry"
	healthuc "github.com/genomebank/searchgw/internal/usecase/health"
	searchuc "github.com/genomebank/searchgw/internal/usecase/search"
	"github.com/genomebank/searchgw/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "searchgw",
		Usage:   "Read-only HTTP query gateway over the biological-database search engine",
		Version: version.String(),
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Environment name selecting the config file (local, dev, prod)",
				Value:   config.GetEnv(),
				Sources: cli.EnvVars("ENV"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "searchgw:", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	env := cmd.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting search gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_url", cfg.Engine.URL),
	)

	engineClient := elastic.New(elastic.Config{
		BaseURL: cfg.Engine.URL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.Engine.TimeoutSec) * time.Second,
		},
		Logger: logger,
	})

	// Create use case services
	searchSvc := searchuc.New(engineClient)
	entrySvc := entryuc.New(engineClient, cfg.Service.BaseURL, cfg.Service.JSONLDContextBase)
	bulkSvc := bulkuc.New(engineClient)
	healthSvc := healthuc.New(engineClient)

	server := chiTransport.NewServer(searchSvc, entrySvc, bulkSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.ProblemRecoverer(logger))
	r.Use(chiTransport.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
