package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cafeteria-api/config"
	"cafeteria-api/events"
	"cafeteria-api/handlers"
	"cafeteria-api/logger"
	"cafeteria-api/mailer"
	"cafeteria-api/metrics"
	"cafeteria-api/middleware"
	"cafeteria-api/routes"
	"cafeteria-api/service"
	"cafeteria-api/store"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.HTTP.GinMode)

	// Initialize database
	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	st := store.New(db, cfg.Database.OpTimeout)

	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.SMTP.Enabled() {
		smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP, log)
		if err != nil {
			log.Fatalf("smtp mailer: %v", err)
		}
		mail = smtpMailer
	}

	bus := events.NewBus(log)
	var publisher events.Publisher = bus
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = events.Connect(cfg.NATS.URL, log)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		natsPub, err := events.NewNATSPublisher(natsConn)
		if err != nil {
			log.Fatalf("nats publisher: %v", err)
		}
		publisher = events.Fanout{bus, natsPub}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	deps := service.Deps{
		Store:   st,
		Mailer:  mail,
		Events:  publisher,
		Metrics: m,
		Log:     log,
	}
	authSvc := service.NewAuthService(deps, cfg.Auth)
	orderSvc := service.NewOrderService(deps)
	catalogSvc := service.NewCatalogService(deps)
	reportingSvc := service.NewReportingService(deps)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Seed.DefaultData {
		seeded, err := authSvc.SeedDefaults(ctx, cfg.Seed.AdminPassword)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if seeded {
			log.Infof("default users and menu installed")
		}
	}

	updates, unsubscribe := bus.Subscribe(64)
	defer unsubscribe()
	go mailer.NewNotifier(mail, log).Run(ctx, updates)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Cafeteria Order Management API",
			"version": "1.0.0",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the CafeteriaHub API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"admin", "employee"},
		})
	})

	h := handlers.New(authSvc, orderSvc, catalogSvc, reportingSvc, bus, log)
	routes.SetupRoutes(r, h, authSvc)

	srv := &http.Server{
		Addr:        ":" + cfg.HTTP.Port,
		Handler:     r,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		// zero keeps SSE streams open
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Infof("server running on http://localhost:%s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("shutting down")

	// close streams first so Shutdown is not held up by open SSE connections
	bus.Close()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	authSvc.Close()
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Warnf("nats drain: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Infof("server stopped")
}
