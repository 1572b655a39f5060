package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-scheduler/config"
	"github.com/jwalitptl/clinic-scheduler/internal/bootstrap"
	"github.com/jwalitptl/clinic-scheduler/internal/email"
	appointmentHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/appointment"
	clinicHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/clinic"
	"github.com/jwalitptl/clinic-scheduler/internal/handler/health"
	scheduleHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/schedule"
	"github.com/jwalitptl/clinic-scheduler/internal/middleware"
	"github.com/jwalitptl/clinic-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/clinic-scheduler/internal/router"
	appointmentService "github.com/jwalitptl/clinic-scheduler/internal/service/appointment"
	clinicService "github.com/jwalitptl/clinic-scheduler/internal/service/clinic"
	"github.com/jwalitptl/clinic-scheduler/internal/service/notification"
	scheduleService "github.com/jwalitptl/clinic-scheduler/internal/service/schedule"
	"github.com/jwalitptl/clinic-scheduler/pkg/auth"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := bootstrap.NewLogger(cfg.Log, "clinic-api")

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatal(err, "Failed to apply schema")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg, "clinic", "api")

	broker, err := bootstrap.NewBroker(cfg.Messaging, log)
	if err != nil {
		log.Fatal(err, "Failed to connect to message broker")
	}
	defer broker.Close()

	// Initialize repositories and services
	repos := postgres.NewRepositories(db)

	clinicSvc := clinicService.NewService(repos.Clinics, repos.Windows, cfg.Scheduling.WindowCacheTTL, log)
	notificationSvc := notification.NewService(repos.Notifications, email.NewService(cfg.SMTP), broker, log)

	scheduleSvc := scheduleService.NewService(scheduleService.Deps{
		Shifts:   repos.Shifts,
		Clinics:  repos.Clinics,
		Doctors:  repos.Doctors,
		Outbox:   repos.Outbox,
		Windows:  clinicSvc,
		Notifier: notificationSvc,
		Metrics:  m,
		Logger:   log,
	}, scheduleService.Settings{
		Step:            cfg.Scheduling.SlotStepMinutes,
		Horizon:         cfg.Scheduling.SearchHorizonDays,
		BookedLookahead: cfg.Scheduling.BookedLookaheadDays,
	})

	appointmentSvc := appointmentService.NewService(
		repos.Appointments,
		repos.Clinics,
		repos.Doctors,
		repos.Outbox,
		clinicSvc,
		m,
		log,
		appointmentService.Settings{
			Step:     cfg.Scheduling.SlotStepMinutes,
			LeadTime: cfg.Scheduling.AppointmentLeadTime,
			Horizon:  cfg.Scheduling.SearchHorizonDays,
		},
	)

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal(err, "Failed to register validators")
	}

	var authMW *middleware.AuthMiddleware
	if cfg.JWT.Enabled {
		authMW = middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer))
	}

	routerCfg := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
		Metrics:        m,
	}
	if cfg.Monitoring.PrometheusEnabled {
		routerCfg.Gatherer = reg
		routerCfg.MetricsPath = cfg.Monitoring.MetricsPath
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(routerCfg, authMW, health.NewHandler(db),
		clinicHandler.NewHandler(clinicSvc),
		scheduleHandler.NewHandler(scheduleSvc),
		appointmentHandler.NewHandler(appointmentSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
