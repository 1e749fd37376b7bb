// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"delegation-workers/internal/common/aws"
	"delegation-workers/internal/common/camunda"
	"delegation-workers/internal/common/config"
	"delegation-workers/internal/common/database"
	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/common/observability"
	"delegation-workers/internal/common/validation"
	"delegation-workers/internal/judge"
	"delegation-workers/internal/matching"
	"delegation-workers/internal/roster"
	"delegation-workers/pkg/registry"

	na "delegation-workers/internal/workers/communication/notify-assignment"
	ae "delegation-workers/internal/workers/evaluation/aggregate-evaluation"
	js "delegation-workers/internal/workers/evaluation/judge-submission"
	aap "delegation-workers/internal/workers/matching/auto-assign-provider"
	ep "delegation-workers/internal/workers/matching/estimate-price"
	fpm "delegation-workers/internal/workers/matching/find-provider-matches"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager", cfg.Observability, zapLog)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity registry & input validation ---
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err), zap.String("path", cfg.RegistryPath))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schemas failed to compile", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Roster source ---
	var source roster.Source
	switch cfg.Matching.RosterSource {
	case config.RosterSourceElasticsearch:
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		source = roster.NewElasticsearchSource(esClient.Client, cfg.Matching.ProviderIndex)
	default:
		source = roster.NewPostgresSource(pg.DB)
	}

	var invalidator ae.RosterInvalidator
	if cfg.Matching.RosterCacheTTL > 0 {
		cached := roster.NewCachedSource(source, rdb.Client,
			time.Duration(cfg.Matching.RosterCacheTTL)*time.Second, log)
		source = cached
		invalidator = cached
	}
	zapLog.Info("roster source ready",
		zap.String("source", cfg.Matching.RosterSource),
		zap.Int("cacheTTLSeconds", cfg.Matching.RosterCacheTTL),
	)

	engine := matching.NewEngine(log, matching.WithParallelThreshold(cfg.Matching.ParallelThreshold))

	deps := workerDeps{
		cfg:         cfg,
		pg:          pg,
		source:      source,
		invalidator: invalidator,
		engine:      engine,
		validator:   validator,
		log:         log,
	}

	// --- Judge (only when its worker runs) ---
	if config.IsWorkerEnabled(cfg, js.TaskType) {
		gen, err := judge.NewGeminiGenerator(ctx, cfg.Judge.APIKey, cfg.Judge.Model)
		if err != nil {
			zapLog.Fatal("judge client init failed", zap.Error(err))
		}
		deps.judge = judge.NewLLMJudge(gen, judge.Options{
			Temperature: cfg.Judge.Temperature,
			MaxRetries:  cfg.Judge.MaxRetries,
		}, log)
	}

	// --- Notification channels ---
	if config.IsWorkerEnabled(cfg, na.TaskType) {
		if cfg.Notifications.Email.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SES client init failed", zap.Error(err))
			}
			deps.email = sesClient
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SNS client init failed", zap.Error(err))
			}
			deps.sms = snsClient
		}
	}

	jobWorkers := registerWorkers(zeebe, deps, zapLog)
	zapLog.Info("workers registered", zap.Int("count", len(jobWorkers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:    cfg.Observability.MetricsAddress,
		Handler: newServeMux(readinessChecks{"postgres": pg.Ping, "redis": rdb.Ping, "zeebe": zeebe.HealthCheck}),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range jobWorkers {
		w.Close()
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type workerDeps struct {
	cfg         *config.Config
	pg          *database.PostgresClient
	source      roster.Source
	invalidator ae.RosterInvalidator
	engine      *matching.Engine
	validator   *validation.Validator
	judge       judge.Judge
	email       aws.EmailSender
	sms         aws.SMSPublisher
	log         logger.Logger
}

// registerWorkers opens one job worker per enabled task type.
func registerWorkers(zeebe *camunda.Client, d workerDeps, zapLog *zap.Logger) []worker.JobWorker {
	cfg := d.cfg
	var opened []worker.JobWorker
	start := func(taskType string, handler worker.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, wcfg, handler, zapLog); w != nil {
			opened = append(opened, w)
		}
	}
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- 1. Matching Workers ---
	{
		c := fpm.LoadConfig()
		c.Timeout = timeout(fpm.TaskType)
		c.MinEvaluationScore = cfg.Matching.MinEvaluationScore
		start(fpm.TaskType, fpm.NewHandler(c, d.engine, d.source, d.validator, d.log).Handle)
	}
	{
		c := aap.LoadConfig()
		c.Timeout = timeout(aap.TaskType)
		c.MinEvaluationScore = cfg.Matching.MinEvaluationScore
		c.DefaultMinScore = cfg.Matching.AutoAssignMinScore
		start(aap.TaskType, aap.NewHandler(c, d.engine, d.source, d.pg.DB, d.validator, d.log).Handle)
	}
	{
		c := ep.LoadConfig()
		c.Timeout = timeout(ep.TaskType)
		start(ep.TaskType, ep.NewHandler(c, d.validator, d.log).Handle)
	}

	// --- 2. Evaluation Workers ---
	if d.judge != nil {
		c := js.LoadConfig()
		c.Timeout = timeout(js.TaskType)
		c.JudgeTimeout = config.GetDuration(cfg.Judge.Timeout)
		c.FallbackEnabled = cfg.Judge.FallbackEnabled
		start(js.TaskType, js.NewHandler(c, d.judge, d.validator, d.log).Handle)
	}
	{
		c := ae.LoadConfig()
		c.Timeout = timeout(ae.TaskType)
		start(ae.TaskType, ae.NewHandler(c, d.pg.DB, d.invalidator, d.validator, d.log).Handle)
	}

	// --- 3. Communication Workers ---
	{
		c := na.LoadConfig()
		c.Timeout = timeout(na.TaskType)
		c.EmailEnabled = cfg.Notifications.Email.Enabled
		c.SMSEnabled = cfg.Notifications.SMS.Enabled
		if cfg.Notifications.Email.FromEmail != "" {
			c.FromEmail = cfg.Notifications.Email.FromEmail
		}
		start(na.TaskType, na.NewHandler(c, d.pg.DB, d.email, d.sms, d.validator, d.log).Handle)
	}

	return opened
}
