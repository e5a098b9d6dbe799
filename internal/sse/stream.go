// Package sse simulates order fulfillment for the storefront's live
// tracking view. Each watched order advances PENDING → PROCESSING →
// SHIPPED → DELIVERED on a timer, with updates broadcast to every
// subscriber of that order. At most one simulation runs per order, and it
// keeps running even when all watchers disconnect.
package sse

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

var statusSequence = []string{
	models.OrderPending,
	models.OrderProcessing,
	models.OrderShipped,
	models.OrderDelivered,
}

var carriers = []string{"FedEx", "UPS", "DHL"}

// shippedETA is how far out the estimated delivery lands when an order
// reaches SHIPPED.
const shippedETA = 3 * 24 * time.Hour

// Simulator advances order statuses and fans updates out to subscribers.
type Simulator struct {
	store        store.Store
	initialDelay time.Duration
	stepDelay    time.Duration

	mu     sync.Mutex
	active map[string]bool
	subs   map[string]map[int]chan models.Order
	nextID int
}

// NewSimulator builds a simulator. The delays are injectable so tests can
// run the sequence quickly; production uses a few seconds per step.
func NewSimulator(st store.Store, initialDelay, stepDelay time.Duration) *Simulator {
	return &Simulator{
		store:        st,
		initialDelay: initialDelay,
		stepDelay:    stepDelay,
		active:       make(map[string]bool),
		subs:         make(map[string]map[int]chan models.Order),
	}
}

// Subscribe registers a watcher for one order. The returned channel
// receives every status update and is closed when the order reaches
// DELIVERED. The cancel func detaches the watcher without stopping the
// simulation.
func (s *Simulator) Subscribe(orderID string) (<-chan models.Order, func()) {
	ch := make(chan models.Order, len(statusSequence))

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	if s.subs[orderID] == nil {
		s.subs[orderID] = make(map[int]chan models.Order)
	}
	s.subs[orderID][id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.subs[orderID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(s.subs, orderID)
			}
		}
	}
}

// EnsureRunning starts a simulation for the order unless it is already
// delivered or one is active. Returns true when the order still has
// statuses left to advance through.
func (s *Simulator) EnsureRunning(order *models.Order) bool {
	if order.Status == models.OrderDelivered {
		return false
	}

	s.mu.Lock()
	if s.active[order.ID] {
		s.mu.Unlock()
		return true
	}
	s.active[order.ID] = true
	s.mu.Unlock()

	go s.run(order.ID, order.Status)
	return true
}

// run advances the order through the remaining statuses. It uses a
// background context so in-flight updates complete even after every
// watcher has gone away.
func (s *Simulator) run(orderID, fromStatus string) {
	ctx := context.Background()
	idx := statusIndex(fromStatus)

	delay := s.initialDelay
	for idx+1 < len(statusSequence) {
		time.Sleep(delay)
		delay = s.stepDelay
		idx++
		next := statusSequence[idx]

		carrier := ""
		var eta *time.Time
		if next == models.OrderShipped {
			carrier = carriers[rand.Intn(len(carriers))]
			t := time.Now().UTC().Add(shippedETA)
			eta = &t
		}

		if err := s.store.UpdateOrderStatus(ctx, orderID, next, carrier, eta); err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("failed to advance order status")
			break
		}
		order, err := s.store.GetOrder(ctx, orderID)
		if err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("failed to reload order")
			break
		}
		log.Info().Str("order_id", orderID).Str("status", next).Msg("order status advanced")
		s.broadcast(orderID, *order, next == models.OrderDelivered)
	}

	s.mu.Lock()
	delete(s.active, orderID)
	s.mu.Unlock()
}

// broadcast fans one update out to every subscriber of the order. Slow
// subscribers that have filled their buffer are skipped rather than
// blocking the simulation. When final, channels are closed and the
// subscriber set is cleared.
func (s *Simulator) broadcast(orderID string, order models.Order, final bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[orderID] {
		select {
		case ch <- order:
		default:
		}
		if final {
			close(ch)
		}
	}
	if final {
		delete(s.subs, orderID)
	}
}

func statusIndex(status string) int {
	for i, st := range statusSequence {
		if st == status {
			return i
		}
	}
	return 0
}
