package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ParcelForge/dispatchbox/config"
	"github.com/ParcelForge/dispatchbox/internal/broker/kafka"
	"github.com/ParcelForge/dispatchbox/internal/cache/rediscache"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider/dhl"
	"github.com/ParcelForge/dispatchbox/internal/integrations/provider/royalmail"
	"github.com/ParcelForge/dispatchbox/internal/services/dispatcher"
	"github.com/ParcelForge/dispatchbox/internal/services/orders"
	"github.com/ParcelForge/dispatchbox/internal/storage/pgorders"
	"github.com/ParcelForge/dispatchbox/internal/telemetry"
)

// workerStorage is what the worker needs from the database layer. Both the
// orders service and the dispatcher read through it.
type workerStorage interface {
	orders.Repository
	dispatcher.Repository
	Ping(ctx context.Context) error
}

type workerFactories struct {
	newStorage     func(cfg *config.Config) (st workerStorage, closeFn func(), err error)
	newRegistry    func(cfg *config.Config) *provider.Registry
	newRateLimiter func(cfg *config.Config) dispatcher.RateLimiter
	newProducer    func(cfg *config.Config) orders.Producer
	newMetrics     func() *telemetry.Metrics
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (workerStorage, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgorders.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newRegistry: func(cfg *config.Config) *provider.Registry {
			return provider.NewRegistry(map[string]provider.Client{
				"dhl":        dhl.New(cfg.DispatchBox.DHLBaseURL, cfg.DispatchBox.DHLAuthToken),
				"royal_mail": royalmail.New(cfg.DispatchBox.RoyalMailBaseURL, cfg.DispatchBox.RoyalMailLogin, cfg.DispatchBox.RoyalMailPassword),
			})
		},
		newRateLimiter: func(cfg *config.Config) dispatcher.RateLimiter {
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			return rediscache.NewRateLimiter(redisAddr)
		},
		newProducer: func(cfg *config.Config) orders.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newMetrics: func() *telemetry.Metrics {
			return telemetry.NewMetrics(nil)
		},
	}
}

func RunDispatchWorker(ctx context.Context, cfg *config.Config, f workerFactories, opts workerHTTPOpts) error {
	dispatchedTopic := cfg.Kafka.OrderDispatchedTopicName
	if dispatchedTopic == "" {
		dispatchedTopic = "order.dispatched"
	}

	scanInterval := time.Duration(cfg.DispatchBox.WorkerScanIntervalSeconds) * time.Second
	if scanInterval <= 0 {
		scanInterval = 24 * time.Hour
	}
	rlPerMin := int64(cfg.DispatchBox.WorkerRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 60
	}

	st, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	registry := f.newRegistry(cfg)
	rl := f.newRateLimiter(cfg)
	producer := f.newProducer(cfg)

	svc := orders.New(st, registry, nil, 0).
		WithProducer(producer, dispatchedTopic).
		WithMetrics(f.newMetrics())

	d := dispatcher.New(st, svc, rl).
		WithSettings(scanInterval, rlPerMin).
		WithProviderRateLimits(
			cfg.DispatchBox.WorkerRateLimitDHLPerMinute,
			cfg.DispatchBox.WorkerRateLimitRoyalMailPerMinute,
		)

	opts.dispatcher = d
	opts.cfg = cfg
	opts.pinger = st

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, opts)
	}()

	dispatchErr := make(chan error, 1)
	go func() {
		dispatchErr <- d.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	case err := <-dispatchErr:
		return err
	}
}
