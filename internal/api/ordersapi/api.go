package ordersapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
	"github.com/ParcelForge/dispatchbox/internal/models"
	"github.com/ParcelForge/dispatchbox/internal/services/orders"
)

// OrderSender is the slice of the orders service the HTTP layer needs.
type OrderSender interface {
	SendOrder(ctx context.Context, publicOrderID string) (bool, error)
	RecordShippingEvent(ctx context.Context, in models.ShippingEventInput) error
}

// Pinger confirms the storage connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

type OrdersAPI struct {
	svc    OrderSender
	pinger Pinger
}

// New builds the API. pinger may be nil, health then skips the db check.
func New(svc OrderSender, pinger Pinger) *OrdersAPI {
	return &OrdersAPI{svc: svc, pinger: pinger}
}

// Routes mounts the public endpoints on r.
func (a *OrdersAPI) Routes(r chi.Router) {
	r.Get("/api/health", a.handleHealth)
	r.Post("/api/send-order/{orderID}/", a.handleSendOrder)
	r.Post("/api/handle-shipping-event/", a.handleShippingEvent)
}

type sendOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *OrdersAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.pinger != nil {
		if err := a.pinger.Ping(r.Context()); err != nil {
			slog.Error("health check", "error", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Database is unreachable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("This system is alive!"))
}

func (a *OrdersAPI) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	ok, err := a.svc.SendOrder(r.Context(), orderID)
	if err != nil {
		var upe *provider.UnknownProviderError
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, sendOrderResponse{
				Success: false,
				Message: fmt.Sprintf("Order with ID %s was not found", orderID),
			})
		case errors.As(err, &upe):
			writeJSON(w, http.StatusNotFound, sendOrderResponse{
				Success: false,
				Message: fmt.Sprintf("Provider with ID %s was not found", upe.Provider),
			})
		default:
			slog.Error("send order", "order_id", orderID, "error", err.Error())
			writeJSON(w, http.StatusInternalServerError, sendOrderResponse{
				Success: false,
				Message: "Internal server error",
			})
		}
		return
	}

	if !ok {
		writeJSON(w, http.StatusInternalServerError, sendOrderResponse{
			Success: false,
			Message: "Failed to send order to the provider",
		})
		return
	}

	writeJSON(w, http.StatusOK, sendOrderResponse{Success: true, Message: "OK"})
}

type shippingEventRequest struct {
	EventName string    `json:"event_name"`
	EventTime time.Time `json:"event_time"`
	OrderID   string    `json:"order_id"`
}

func (a *OrdersAPI) handleShippingEvent(w http.ResponseWriter, r *http.Request) {
	var req shippingEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": map[string][]string{"_body": {"Invalid JSON body."}},
		})
		return
	}

	err := a.svc.RecordShippingEvent(r.Context(), models.ShippingEventInput{
		EventName:     req.EventName,
		EventTime:     req.EventTime,
		PublicOrderID: req.OrderID,
	})
	if err != nil {
		var ve *orders.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": ve.Fields})
			return
		}
		slog.Error("handle shipping event", "order_id", req.OrderID, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "OK"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write response", "error", err.Error())
	}
}
