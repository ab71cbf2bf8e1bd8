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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"internship-workers/internal/catalog"
	awsclient "internship-workers/internal/common/aws"
	"internship-workers/internal/common/camunda"
	"internship-workers/internal/common/config"
	"internship-workers/internal/common/database"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/common/observability"
	"internship-workers/internal/matching"
	"internship-workers/internal/profile"

	nr "internship-workers/internal/workers/communication/notify-recommendations"
	ns "internship-workers/internal/workers/matching/normalize-skills"
	ri "internship-workers/internal/workers/matching/rank-internships"
	si "internship-workers/internal/workers/matching/score-internship"
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
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, zapLog)
	defer obs.Shutdown()

	if cfg.Observability.Tracing.Enabled {
		if err := obs.EnableTracing(observability.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
			SampleRatio:    cfg.Observability.Tracing.SampleRatio,
		}); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
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
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Catalog source ---
	var source catalog.Source = catalog.NewRepository(pg.DB)
	checks := map[string]func(context.Context) error{
		"zeebe":    zeebe.HealthCheck,
		"postgres": pg.Ping,
		"redis":    redis.Ping,
	}

	if cfg.Matching.CatalogSource == config.CatalogSourceElasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		source = catalog.NewSearch(es.Client, es.Index)
		checks["elasticsearch"] = es.Ping
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", es.Index))
	}
	zapLog.Info("Catalog source selected", zap.String("source", source.Name()))

	// --- Notification clients ---
	var (
		sesAPI awsclient.SESAPI
		snsAPI awsclient.SNSAPI
	)
	notifyEnabled := config.IsWorkerEnabled(cfg, nr.TaskType)
	if notifyEnabled && (cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled) {
		clients, err := awsclient.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws clients failed", zap.Error(err))
		}
		sesAPI, snsAPI = clients.SES, clients.SNS
		zapLog.Info("AWS notification clients initialized", zap.String("region", cfg.Notifications.AWS.Region))
	} else if !notifyEnabled {
		zapLog.Info("AWS notification clients skipped", zap.String("taskType", nr.TaskType))
	}

	// --- Matching core ---
	normalizer := matching.NewNormalizer(cfg.Matching.AliasTable())
	engine := matching.NewEngine(normalizer, nil)
	profiles := profile.NewStore(pg.DB, redis.Client, cfg.Matching.ProfileCacheTTLDuration(), log)
	zapLog.Info("Matching engine ready", zap.Int("canonicalSkills", normalizer.Size()))

	// --- Register workers ---
	zbClient := zeebe.Zeebe()
	var workers []*camunda.Worker

	wcfg := config.GetWorkerConfig(cfg, ns.TaskType)
	workers = append(workers, camunda.StartWorker(zbClient, ns.TaskType, wcfg,
		ns.NewHandler(ns.LoadConfig(wcfg), engine, obs, log).Handle, obs, zapLog))

	wcfg = config.GetWorkerConfig(cfg, si.TaskType)
	workers = append(workers, camunda.StartWorker(zbClient, si.TaskType, wcfg,
		si.NewHandler(si.LoadConfig(wcfg, cfg.Matching), engine, profiles, obs, log).Handle, obs, zapLog))

	wcfg = config.GetWorkerConfig(cfg, ri.TaskType)
	workers = append(workers, camunda.StartWorker(zbClient, ri.TaskType, wcfg,
		ri.NewHandler(ri.LoadConfig(wcfg, cfg.Matching), engine, profiles, source, obs, log).Handle, obs, zapLog))

	wcfg = config.GetWorkerConfig(cfg, nr.TaskType)
	workers = append(workers, camunda.StartWorker(zbClient, nr.TaskType, wcfg,
		nr.NewHandler(nr.LoadConfig(wcfg, cfg.Notifications), sesAPI, snsAPI, obs, log).Handle, obs, zapLog))

	zapLog.Info("All workers registered")

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(checks))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
