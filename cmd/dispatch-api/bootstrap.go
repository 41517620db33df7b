package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ParcelForge/dispatchbox/config"
	"github.com/ParcelForge/dispatchbox/internal/broker/kafka"
	"github.com/ParcelForge/dispatchbox/internal/cache/rediscache"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider/dhl"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider/royalmail"
	"github.com/ParcelForge/dispatchbox/internal/services/orders"
	"github.com/ParcelForge/dispatchbox/internal/storage/pgorders"
	"github.com/ParcelForge/dispatchbox/internal/telemetry"
)

type dispatchAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     dispatchAPIOpts
	svc      *orders.Service
	storage  *pgorders.Storage
	consumer *kafka.Consumer
	closeDB  func()
}

func mustBootstrapDispatchAPI() *dispatchAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config, %v", err))
	}

	httpAddr := cfg.DispatchBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.DispatchBox.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "dispatch-api"
	}
	eventsTopic := cfg.Kafka.ShippingEventsTopicName
	if eventsTopic == "" {
		eventsTopic = "shipping.events"
	}
	dispatchedTopic := cfg.Kafka.OrderDispatchedTopicName
	if dispatchedTopic == "" {
		dispatchedTopic = "order.dispatched"
	}

	cacheTTL := time.Duration(cfg.DispatchBox.OrderCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	if os.Getenv("seedDemoData") == "true" {
		if err := st.SeedDemoData(context.Background()); err != nil {
			panic(fmt.Sprintf("seed demo data: %v", err))
		}
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)

	registry := newProviderRegistry(cfg)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, eventsTopic, consumerGroup)

	svc := orders.New(st, registry, rc, cacheTTL).
		WithProducer(producer, dispatchedTopic).
		WithMetrics(telemetry.NewMetrics(nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &dispatchAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: dispatchAPIOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         eventsTopic,
			consumerGroup: consumerGroup,
		},
		svc:      svc,
		storage:  st,
		consumer: consumer,
		closeDB:  st.Close,
	}
}

// newProviderRegistry wires the providers orders can be dispatched to.
// amazon_prime is a valid order value with no client behind it yet.
func newProviderRegistry(cfg *config.Config) *provider.Registry {
	return provider.NewRegistry(map[string]provider.Client{
		"dhl":        dhl.New(cfg.DispatchBox.DHLBaseURL, cfg.DispatchBox.DHLAuthToken),
		"royal_mail": royalmail.New(cfg.DispatchBox.RoyalMailBaseURL, cfg.DispatchBox.RoyalMailLogin, cfg.DispatchBox.RoyalMailPassword),
	})
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgorders.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgorders.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *dispatchAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *dispatchAPIApp) Run() error {
	return runDispatchAPI(a.ctx, a.opts, a.svc, a.storage, a.consumer)
}
