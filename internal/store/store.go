// Package store provides the storage interface and implementations for the
// Shoplite API. The in-memory store backs local development and tests; the
// PostgreSQL store backs real deployments.
package store

import (
	"context"
	"time"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// Store is the primary storage interface. All handler and assistant code
// depends on this interface, making it easy to swap between in-memory
// (tests) and PostgreSQL (production) implementations.
type Store interface {
	ProductStore
	OrderStore
	CustomerStore
	ConversationStore
	AssistantLogStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error
}

// ── Product Store ───────────────────────────────────────────

// ProductFilter defines optional filters for listing products.
type ProductFilter struct {
	Search string // substring match on name/description
	Tag    string // exact match on one tag
	Sort   string // "price-asc", "price-desc", default name ascending
}

type ProductStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error

	// SearchProducts matches the term against product names,
	// case-insensitive, capped at limit results.
	SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error)

	CountProducts(ctx context.Context) (int64, error)
}

// ── Order Store ─────────────────────────────────────────────

type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error

	// UpdateOrderStatus advances an order through its lifecycle. Carrier and
	// eta are applied only when non-zero (they are assigned once at SHIPPED).
	UpdateOrderStatus(ctx context.Context, id, status, carrier string, eta *time.Time) error

	// ListOrdersByCustomer returns a customer's orders newest first,
	// capped at limit (0 = no cap).
	ListOrdersByCustomer(ctx context.Context, customerID string, limit int) ([]models.Order, error)

	CountOrdersByCustomer(ctx context.Context, customerID string) (int64, error)

	// SumOrdersByCustomer aggregates total spend and order count.
	SumOrdersByCustomer(ctx context.Context, customerID string) (*models.OrderAggregate, error)

	// LastOrderByCustomer returns the most recently created order.
	LastOrderByCustomer(ctx context.Context, customerID string) (*models.Order, error)

	// DailyRevenue buckets revenue and order counts per day over [from, to].
	DailyRevenue(ctx context.Context, from, to time.Time) ([]models.DailyRevenue, error)

	// BusinessMetrics computes the storewide dashboard summary.
	BusinessMetrics(ctx context.Context) (*models.BusinessMetrics, error)
}

// ── Customer Store ──────────────────────────────────────────

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
}

// ── Conversation Store ──────────────────────────────────────

// ConversationStore is the append-only turn log behind the assistant.
type ConversationStore interface {
	// AppendTurn persists one turn. Turns are immutable once written.
	AppendTurn(ctx context.Context, turn *models.Turn) error

	// RecentTurns returns the most recent limit turns for a session,
	// re-sorted oldest first so callers can render them as a transcript.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error)
}

// ── Assistant Log Store ─────────────────────────────────────

// AssistantLogStore records per-query analytics entries the engine appends
// best-effort after every handled turn.
type AssistantLogStore interface {
	AppendAssistantLog(ctx context.Context, entry *models.AssistantLog) error
	AssistantStats(ctx context.Context) (*models.AssistantStats, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
