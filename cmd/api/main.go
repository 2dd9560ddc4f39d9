package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/todolist/internal/app/handlers"
	"github.com/kalpovskii/todolist/internal/app/repositories"
	"github.com/kalpovskii/todolist/internal/app/services"
	"github.com/kalpovskii/todolist/internal/config"
	"github.com/kalpovskii/todolist/internal/kafka"
	"github.com/kalpovskii/todolist/internal/logging"
	"github.com/kalpovskii/todolist/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// @title To-Do List API
// @version 1.0.0
// @description API for managing a to-do list
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Env,
		}); err != nil {
			log.Fatalf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	repo := repositories.NewMemoryTodoRepo()

	var cache repositories.TodoCache = repositories.NopTodoCache{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis %s: %v", cfg.Redis.Addr, err)
		}
		cache = repositories.NewRedisTodoCache(rdb)
		log.WithField("addr", cfg.Redis.Addr).Info("Redis cache enabled")
	}

	var events services.EventPublisher
	if cfg.Kafka.Broker != "" {
		producer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic, log)
		defer producer.Close()
		events = producer
		log.WithFields(logrus.Fields{"broker": cfg.Kafka.Broker, "topic": cfg.Kafka.Topic}).Info("Kafka events enabled")
	}

	service := services.NewTodoService(repo, cache, events, log)
	app, metricRouter := newRouter(cfg, service, log)

	var metricsServer *http.Server
	if metricRouter != nil {
		if err := metrics.RegisterTodoGauge(prometheus.DefaultRegisterer, repo); err != nil {
			log.Fatalf("metrics: %v", err)
		}
		metricsServer = &http.Server{
			Addr:    ":" + cfg.Metrics.Port,
			Handler: metricRouter,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: app,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("To-Do List API running at http://localhost:%s%s", cfg.Port, cfg.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
}

// newRouter builds the API engine. The metrics router is nil when metrics
// are disabled.
func newRouter(cfg *config.Config, service handlers.TodoService, log logrus.FieldLogger) (*gin.Engine, *gin.Engine) {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	app := gin.New()
	app.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		app.Use(sentrygin.New(sentrygin.Options{
			Repanic: true,
		}))
	}
	if cfg.IsDev() {
		app.Use(logging.Middleware(log))
	}
	app.Use(gzip.Gzip(gzip.DefaultCompression))

	// middleware must be attached before routes are registered
	var metricRouter *gin.Engine
	if cfg.Metrics.Port != "" {
		metricRouter = metrics.Instrument(app, cfg.Metrics.Path)
	}

	handlers.RegisterRoutes(app, cfg.BasePath, handlers.NewTodoHandler(service, log))
	return app, metricRouter
}
