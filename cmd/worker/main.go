package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/clinic-scheduler/config"
	"github.com/jwalitptl/clinic-scheduler/internal/bootstrap"
	"github.com/jwalitptl/clinic-scheduler/internal/email"
	"github.com/jwalitptl/clinic-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/clinic-scheduler/internal/service/notification"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
	"github.com/jwalitptl/clinic-scheduler/pkg/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := bootstrap.NewLogger(cfg.Log, "clinic-worker")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := bootstrap.NewBroker(cfg.Messaging, log)
	if err != nil {
		log.Fatal(err, "Failed to connect to message broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg, "clinic", "worker")

	base := postgres.NewBaseRepository(db)
	outbox := postgres.NewOutboxRepository(base)

	processor, err := worker.NewOutboxProcessor(outbox, broker, worker.OutboxProcessorConfig{
		Topic:         cfg.Messaging.Topic,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, log.WithFields(map[string]interface{}{"component": "outbox_processor"}), m)
	if err != nil {
		log.Fatal(err, "Failed to create outbox processor")
	}
	cleanup := worker.NewOutboxCleanupWorker(outbox, cfg.Outbox.RetentionPeriod, cfg.Outbox.CleanupInterval,
		log.WithFields(map[string]interface{}{"component": "outbox_cleanup"}))

	retrier := notification.NewRetrier(postgres.NewNotificationRepository(base), email.NewService(cfg.SMTP), broker, log)
	retries := worker.NewNotificationRetryWorker(retrier, cfg.Notify.RetryBatchSize, cfg.Notify.RetryInterval,
		log.WithFields(map[string]interface{}{"component": "notification_retry"}))

	metricsSrv := &http.Server{
		Addr:              cfg.Monitoring.WorkerAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.Monitoring.PrometheusEnabled {
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err, "Metrics server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, start := range []func(context.Context){processor.Start, cleanup.Start, retries.Start} {
		wg.Add(1)
		go func(start func(context.Context)) {
			defer wg.Done()
			start(ctx)
		}(start)
	}

	log.Info("Worker started", "driver", cfg.Messaging.Driver, "topic", cfg.Messaging.Topic)
	<-ctx.Done()
	log.Info("Shutting down worker")

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Metrics server forced to shutdown")
	}

	log.Info("Worker exited")
}
