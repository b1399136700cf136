package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/item-api/internal/config"
	"github.com/iliyamo/item-api/internal/database"
	"github.com/iliyamo/item-api/internal/handler"
	"github.com/iliyamo/item-api/internal/queue"
	"github.com/iliyamo/item-api/internal/repository"
	"github.com/iliyamo/item-api/internal/router"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(parseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// The database is the only hard dependency: no connection, no server.
	mongo, err := database.Connect(ctx, cfg.MongoConnectionURI(), cfg.MongoDatabaseName())
	if err != nil {
		e.Logger.Fatalf("MongoDB connection error: %v", err)
	}
	e.Logger.Infof("Connected to MongoDB (database=%s)", cfg.MongoDatabaseName())

	var checks []handler.Check
	if cfg.MariaDB.Enabled() {
		m := cfg.MariaDB
		sqlCheck, err := database.OpenSQLCheck(m.User, m.Password, m.Host, m.Port, m.Database)
		if err != nil {
			e.Logger.Fatalf("MariaDB readiness check: %v", err)
		}
		defer sqlCheck.Close()
		checks = append(checks, sqlCheck)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		e.Logger.Info("Redis not available, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var events handler.EventPublisher
	if pub := queue.NewPublisher(cfg.AMQPURL); pub != nil {
		events = pub
		if cfg.EventsAuditLog != "" {
			audit := &queue.AuditConsumer{URL: cfg.AMQPURL, Path: cfg.EventsAuditLog, Logger: e.Logger}
			go func() { _ = audit.Run(ctx) }()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router.Setup(e, reg)
	router.RegisterRoutes(e, handler.NewHealthHandler(cfg.ServiceName, version, mongo, checks...))
	router.RegisterItems(e, handler.NewItemHandler(repository.NewItemRepo(mongo.Database()), events),
		config.LoadRateLimitConfig(), rdb)

	go func() {
		e.Logger.Infof("API Service listening on %s", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("termination signal received, closing server...")

	// In-flight requests are not drained.
	_ = e.Close()
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongo.Close(closeCtx); err != nil {
		e.Logger.Warnf("MongoDB disconnect: %v", err)
	}
}

func parseLevel(s string) log.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}
