package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"idflow/internal/platform/config"
	"idflow/internal/platform/health"
	"idflow/internal/platform/httpserver"
	"idflow/internal/platform/kafka/producer"
	"idflow/internal/platform/logger"
	"idflow/internal/platform/redis"
	httptransport "idflow/internal/transport/http"
	"idflow/internal/verification/events"
	"idflow/internal/verification/handler"
	"idflow/internal/verification/metrics"
	"idflow/internal/verification/provider"
	"idflow/internal/verification/service"
	"idflow/internal/verification/store"
	"idflow/internal/verification/tracer"
	request "idflow/pkg/platform/middleware/request"
)

const (
	shutdownGrace     = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing idflow",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"session_backend", cfg.Sessions.Backend,
		"webhook_async", cfg.WebhookAsync,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	healthHandler := health.New(cfg.Environment)

	redisClient, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return err
	}
	var rawRedis *goredis.Client
	if redisClient != nil {
		defer redisClient.Close()
		rawRedis = redisClient.Client
		healthHandler.RegisterCheck("redis", redisClient.Health)
	}

	sessions, err := store.New(cfg.Sessions, rawRedis)
	if err != nil {
		return err
	}

	var publisher service.OutcomePublisher = events.NewLogPublisher(log)
	if cfg.Kafka.Brokers != "" {
		kafkaProducer, err := producer.New(cfg.Kafka, log)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close()
		healthHandler.RegisterCheck("kafka", kafkaProducer.Health)
		publisher = events.NewKafkaPublisher(kafkaProducer, cfg.Kafka.OutcomeTopic)
	}

	verificationMetrics := metrics.New(reg)
	verificationTracer := tracer.NewOTel()
	api := provider.NewAPI(
		provider.NewClient(cfg.Provider.BaseURL, provider.WithTimeout(cfg.Provider.Timeout)),
		cfg.Provider,
		provider.WithMetrics(verificationMetrics),
		provider.WithTracer(verificationTracer),
	)

	svc := service.NewService(sessions, api, log,
		service.WithMetrics(verificationMetrics),
		service.WithTracer(verificationTracer),
		service.WithPublisher(publisher),
		service.WithContract(cfg.Contract),
		service.WithAsyncWebhooks(cfg.WebhookAsync),
	)

	router := httptransport.NewRouter(httptransport.Options{
		Logger:   log,
		Health:   healthHandler,
		Gatherer: reg,
		Metrics:  request.NewMetrics(reg),
	}, handler.New(svc, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, httpserver.New(cfg.Addr, router), config.TLSConfig{}, shutdownGrace, log)
	})
	if cfg.TLS.Enabled() {
		g.Go(func() error {
			return httpserver.Serve(gctx, httpserver.New(cfg.TLS.Addr, router), cfg.TLS, shutdownGrace, log)
		})
	}
	if redisClient != nil {
		g.Go(func() error {
			return redisClient.RunPoolStats(gctx, poolStatsInterval)
		})
	}

	err = g.Wait()
	log.Info("draining webhook processing")
	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if waitErr := svc.Wait(waitCtx); waitErr != nil {
		log.Warn("webhook processing did not drain", "error", waitErr)
	}
	return err
}
