package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appservices "mindgraph/application/services"
	domainservices "mindgraph/domain/services"
	"mindgraph/infrastructure/assistant"
	"mindgraph/infrastructure/config"
	"mindgraph/infrastructure/memory"
	"mindgraph/interfaces/http/rest"
	"mindgraph/interfaces/http/rest/handlers"
	pkgerrors "mindgraph/pkg/errors"
	"mindgraph/pkg/observability"
)

func main() {
	// Load .env file if present (development convenience)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	metrics := observability.NewCollector("mindgraph")
	errorHandler := pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())

	// Upstream client
	client := assistant.NewClient(assistant.Config{
		BaseURL:  cfg.Assistant.BaseURL,
		Timeout:  time.Duration(cfg.Assistant.TimeoutSeconds) * time.Second,
		PageSize: cfg.Assistant.PageSize,
		MaxPages: cfg.Assistant.MaxPages,
	}, logger)

	// Domain services
	inference := domainservices.NewInferenceEngine(&domainservices.InferenceConfig{
		SemanticThreshold:   cfg.Inference.SemanticThreshold,
		MentionStrength:     cfg.Inference.MentionStrength,
		TemporalWindowHours: cfg.Inference.TemporalWindowHours,
	}, nil, nil)
	assembler := domainservices.NewGraphAssembler()

	// Hot-reload inference thresholds when the config file changes
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		watcher, err := config.NewWatcher(path, cfg.Inference, logger)
		if err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
			watcher.OnChange(func(inf config.InferenceConfig) {
				inference.SetConfig(&domainservices.InferenceConfig{
					SemanticThreshold:   inf.SemanticThreshold,
					MentionStrength:     inf.MentionStrength,
					TemporalWindowHours: inf.TemporalWindowHours,
				})
			})
		}
	}

	// Application services
	operations := memory.NewOperationStore(time.Hour)
	graphService := appservices.NewGraphService(client, inference, assembler, logger, metrics)
	scanService := appservices.NewScanService(
		client, client, operations, inference, logger, metrics,
		time.Duration(cfg.Inference.ScanIntervalMs)*time.Millisecond,
	)
	suggestionService := appservices.NewSuggestionService(client, nil, logger)
	connectionService := appservices.NewConnectionService(client, logger, metrics)

	router := rest.NewRouter(cfg, logger, metrics, rest.Handlers{
		Graph:      handlers.NewGraphHandler(graphService, errorHandler),
		Note:       handlers.NewNoteHandler(suggestionService, scanService, errorHandler),
		Scan:       handlers.NewScanHandler(scanService, errorHandler),
		Connection: handlers.NewConnectionHandler(connectionService, errorHandler),
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("assistant_api", cfg.Assistant.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))
		return zcfg.Build()
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zcfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
