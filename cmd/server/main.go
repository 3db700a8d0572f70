package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/application/service"
	"github.com/garyjia/ai-collections/internal/config"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/infrastructure/export"
	"github.com/garyjia/ai-collections/internal/infrastructure/external/crm"
	"github.com/garyjia/ai-collections/internal/infrastructure/external/lark"
	"github.com/garyjia/ai-collections/internal/infrastructure/external/openai"
	"github.com/garyjia/ai-collections/internal/infrastructure/external/ses"
	"github.com/garyjia/ai-collections/internal/infrastructure/lock"
	"github.com/garyjia/ai-collections/internal/infrastructure/metrics"
	"github.com/garyjia/ai-collections/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ai-collections/internal/infrastructure/worker"
	httpserver "github.com/garyjia/ai-collections/internal/interfaces/http"
	"github.com/garyjia/ai-collections/internal/recommendation"
	"github.com/garyjia/ai-collections/internal/routing"
	"github.com/garyjia/ai-collections/internal/scoring"
	"github.com/garyjia/ai-collections/pkg/database"
	"github.com/garyjia/ai-collections/pkg/utils"
)

func main() {
	// Credentials may come from a local .env file
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "ai-collections",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AR Collections Decisioning Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service exited with error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	store := sqlite.NewDB(db.DB, logger)
	recRepo := sqlite.NewRecommendationRepository(store, logger)
	approvalRepo := sqlite.NewApprovalRepository(store, logger)

	// Scoring and routing
	scorer := scoring.NewEngine(
		scoring.WithWeights(cfg.Scoring.Weights),
		scoring.WithRiskThresholds(cfg.Scoring.RiskThresholds),
	)
	router := routing.NewEngine(cfg.Routing.Thresholds, cfg.Routing.Tiers)

	promptCfg := routing.DefaultPromptConfig()
	if cfg.Routing.PromptsPath != "" {
		promptCfg, err = routing.LoadPromptConfig(cfg.Routing.PromptsPath)
		if err != nil {
			return fmt.Errorf("failed to load prompt config: %w", err)
		}
	}
	prompts, err := routing.NewPromptBuilder(promptCfg)
	if err != nil {
		return fmt.Errorf("failed to build prompts: %w", err)
	}

	// One OpenAI-compatible endpoint serves every tier; the tier picks the model
	drafter := openai.NewDrafter(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}, logger)

	generator, err := recommendation.NewGenerator(
		port.CapabilitySet{
			entity.TierRoutine:   drafter,
			entity.TierStrategic: drafter,
			entity.TierSensitive: drafter,
		},
		cfg.Routing.Tiers,
		recommendation.WithPromptBuilder(prompts),
		recommendation.WithImpactConfig(cfg.Impact),
		recommendation.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize recommendation generator: %w", err)
	}

	// Locking
	var locker port.InvoiceLocker
	if cfg.Redis.Address != "" {
		client := lock.NewRedisClient(lock.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL, logger)
		logger.Info("Using redis locks", zap.String("address", cfg.Redis.Address))
	} else {
		locker = lock.NewLocalLocker()
		logger.Warn("Redis not configured, using in-process locks")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Execution and activity logging
	var executor port.CollectionExecutor
	if cfg.SES.Enabled {
		executor, err = ses.NewEmailExecutor(ctx, ses.Config{
			Region:           cfg.SES.Region,
			Sender:           cfg.SES.Sender,
			ConfigurationSet: cfg.SES.ConfigurationSet,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize SES executor: %w", err)
		}
	} else {
		executor = ses.NewDryRunExecutor(logger)
		logger.Warn("SES disabled, approved emails will only be logged")
	}

	var activityLoggers []port.ActivityLogger
	if cfg.CRM.Enabled {
		activityLoggers = append(activityLoggers, crm.NewClient(crm.Config{
			BaseURL:     cfg.CRM.BaseURL,
			AccessToken: cfg.CRM.AccessToken,
			Timeout:     cfg.CRM.Timeout,
		}, logger))
	}
	if cfg.Lark.Enabled {
		notifier, err := lark.NewActivityNotifier(lark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatID:    cfg.Lark.ChatID,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize lark notifier: %w", err)
		}
		activityLoggers = append(activityLoggers, notifier)
	}

	// Services
	serviceLogger := utils.NewKeyValueLogger(logger)
	collectionService := service.NewCollectionService(
		scorer, router, generator, recRepo, locker, collector, serviceLogger,
	)
	approvalService := service.NewApprovalService(
		recRepo,
		approvalRepo,
		store,
		executor,
		activityLoggers,
		locker,
		collector,
		service.ApprovalServiceConfig{ActivityTimeout: cfg.Activity.Timeout},
		serviceLogger,
	)

	// Background workers
	workers := worker.NewWorkerManager(logger)
	workers.Register(worker.NewExecutionWorker(worker.ExecutionWorkerConfig{
		PollInterval: cfg.Execution.PollInterval,
		BatchSize:    cfg.Execution.BatchSize,
	}, approvalRepo, approvalService, logger))

	if err := workers.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer func() {
		if err := workers.StopAll(); err != nil {
			logger.Error("Failed to stop workers", zap.Error(err))
		}
	}()

	// HTTP
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		collectionService,
		approvalService,
		export.NewWorklistExporter(logger),
		db,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		serviceLogger,
	)

	return server.Start(ctx)
}
