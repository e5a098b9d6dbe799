package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// ── Order Handlers ──────────────────────────────────────────

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" || !validID(customerID) {
		respondError(w, http.StatusBadRequest, "A valid customerId query parameter is required")
		return
	}
	orders, err := h.Store.ListOrdersByCustomer(r.Context(), customerID, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

type createOrderRequest struct {
	CustomerID string             `json:"customerId"`
	Items      []models.OrderItem `json:"items"`
	Total      float64            `json:"total"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == "" || len(req.Items) == 0 || req.Total <= 0 {
		respondError(w, http.StatusBadRequest, "Missing required fields: customerId, items, and total are required.")
		return
	}
	if !validID(req.CustomerID) {
		respondError(w, http.StatusBadRequest, "Invalid customerId format.")
		return
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:         newEntityID(),
		CustomerID: req.CustomerID,
		Items:      req.Items,
		Total:      req.Total,
		Status:     models.OrderPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.Store.CreateOrder(r.Context(), order); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderId")
	if !validID(id) {
		respondError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}
	order, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// StreamOrder serves the live order-status feed over server-sent events.
// The first event is the order's current state; subsequent events arrive
// as the simulator advances it. The stream ends when the order is
// delivered or the client disconnects.
func (h *Handlers) StreamOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderId")
	if !validID(id) {
		respondError(w, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sendEvent := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	order, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		sendEvent(map[string]string{"error": "Order not found"})
		return
	}
	sendEvent(order)

	// Subscribe before kicking the simulation so no update is missed.
	updates, cancel := h.Simulator.Subscribe(id)
	defer cancel()

	if !h.Simulator.EnsureRunning(order) {
		return
	}

	for {
		select {
		case updated, open := <-updates:
			if !open {
				return
			}
			sendEvent(updated)
			if updated.Status == models.OrderDelivered {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
