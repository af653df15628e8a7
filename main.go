package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/app"
	"oc-ticketing/internal/config"
	"oc-ticketing/internal/events"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/receipt"
	"oc-ticketing/internal/session"
	"oc-ticketing/internal/teams"
	"oc-ticketing/internal/web"
)

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("REDIS", "REDIS_ADDR not set, session credentials kept in memory")
		return nil
	}
	client, err := session.Connect(ctx, cfg.Addr, cfg.DB)
	if err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, falling back to memory: %v", cfg.Addr, err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client
}

func newPublisher(cfg config.KafkaConfig, log *logger.Logger) events.Publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, activity events are not published")
		return events.Noop{}
	}
	topics := events.NewTopics(cfg.TopicPrefix)
	if err := events.EnsureTopicsExist(cfg.Brokers, topics.All()); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}
	log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Brokers))
	return events.NewProducer(cfg.Brokers, topics, log)
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Dir)
	defer log.Close()

	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	log.Info("APP", fmt.Sprintf("Starting ticketing front-end against %s", cfg.API.BaseURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := apiclient.NewMetrics(registry)

	httpClient := &http.Client{Timeout: cfg.API.Timeout}

	rdb := connectRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher := newPublisher(cfg.Kafka, log)
	defer publisher.Close()

	factory := &app.Factory{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: httpClient,
		Metrics:    metrics,
		Teams: teams.NewDirectory(cfg.Teams.DirectoryURL, cfg.Teams.Sport, cfg.Teams.Country, log,
			apiclient.WithHTTPClient(httpClient), apiclient.WithLogger(log), apiclient.WithMetrics(metrics)),
		Publisher:  publisher,
		QR:         receipt.NewQRGenerator(cfg.Receipt.QRSecret),
		ReceiptDir: cfg.Receipt.Dir,
		Logger:     log,
	}

	sessions := web.NewSessions(factory, rdb, cfg.Server.SessionTTL, log)
	go sessions.RunSweeper(ctx, time.Minute)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      web.NewRouter(sessions, registry, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Ticketing front-end running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Shutdown complete")
	}
}
