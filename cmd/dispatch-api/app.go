package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ParcelForge/dispatchbox/internal/api/ordersapi"
	"github.com/ParcelForge/dispatchbox/internal/broker/messages"
	"github.com/ParcelForge/dispatchbox/internal/models"
	"github.com/ParcelForge/dispatchbox/internal/services/orders"
)

type dispatchAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runDispatchAPI(ctx context.Context, opts dispatchAPIOpts, svc *orders.Service, pinger ordersapi.Pinger, consumer kafkaConsumer) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := chi.NewRouter()
	ordersapi.New(svc, pinger).Routes(r)

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})
	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(opts.swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))

	r.Handle("/metrics", promhttp.Handler())

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			var m messages.ShippingEventReceived
			if err := json.Unmarshal(value, &m); err != nil {
				slog.Error("decode shipping event message", "error", err.Error())
				return nil
			}
			err := svc.RecordShippingEvent(ctx, models.ShippingEventInput{
				EventName:     m.EventName,
				EventTime:     m.EventTime,
				PublicOrderID: m.OrderID,
			})
			var ve *orders.ValidationError
			if errors.As(err, &ve) {
				// Rejected events are not retried, the offset still commits.
				slog.Warn("shipping event rejected", "order_id", m.OrderID, "fields", ve.Fields)
				return nil
			}
			return err
		})
	}()

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
