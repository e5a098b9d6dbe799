// Package store — in-memory Store implementation.
// Used as a fallback when PostgreSQL is not available (local dev, tests).
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[string]*models.Product  // key: id
	orders    map[string]*models.Order    // key: id
	customers map[string]*models.Customer // key: id
	turns     map[string][]*models.Turn   // key: session_id → append-only log
	logs      []*models.AssistantLog      // append-only log
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]*models.Product),
		orders:    make(map[string]*models.Order),
		customers: make(map[string]*models.Customer),
		turns:     make(map[string][]*models.Turn),
		logs:      make([]*models.AssistantLog, 0),
	}
}

func (m *MemoryStore) Ping(_ context.Context) error    { return nil }
func (m *MemoryStore) Close() error                    { return nil }
func (m *MemoryStore) Migrate(_ context.Context) error { return nil }

// ── Product Store ───────────────────────────────────────────

func (m *MemoryStore) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Product, 0, len(m.products))
	search := strings.ToLower(filter.Search)
	for _, p := range m.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if filter.Tag != "" && !hasTag(p.Tags, filter.Tag) {
			continue
		}
		result = append(result, *p)
	}
	switch filter.Sort {
	case "price-asc":
		sort.Slice(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case "price-desc":
		sort.Slice(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	default:
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	}
	return result, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "product", Key: id}
	}
	copy := *p
	return &copy, nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *product
	m.products[product.ID] = &copy
	return nil
}

func (m *MemoryStore) SearchProducts(_ context.Context, term string, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(term)
	var result []models.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) CountProducts(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.products)), nil
}

// ── Order Store ─────────────────────────────────────────────

func (m *MemoryStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "order", Key: id}
	}
	copy := *o
	return &copy, nil
}

func (m *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *order
	m.orders[order.ID] = &copy
	return nil
}

func (m *MemoryStore) UpdateOrderStatus(_ context.Context, id, status, carrier string, eta *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return &ErrNotFound{Entity: "order", Key: id}
	}
	o.Status = status
	if carrier != "" {
		o.Carrier = carrier
	}
	if eta != nil {
		o.EstimatedDelivery = eta
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListOrdersByCustomer(_ context.Context, customerID string, limit int) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []models.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) CountOrdersByCustomer(_ context.Context, customerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) SumOrdersByCustomer(_ context.Context, customerID string) (*models.OrderAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg := &models.OrderAggregate{}
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			agg.TotalSpent += o.Total
			agg.OrderCount++
		}
	}
	return agg, nil
}

func (m *MemoryStore) LastOrderByCustomer(_ context.Context, customerID string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *models.Order
	for _, o := range m.orders {
		if o.CustomerID != customerID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, &ErrNotFound{Entity: "order", Key: "customer:" + customerID}
	}
	copy := *latest
	return &copy, nil
}

func (m *MemoryStore) DailyRevenue(_ context.Context, from, to time.Time) ([]models.DailyRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buckets := make(map[string]*models.DailyRevenue)
	for _, o := range m.orders {
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		day := o.CreatedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &models.DailyRevenue{Date: day}
			buckets[day] = b
		}
		b.Revenue += o.Total
		b.OrderCount++
	}
	result := make([]models.DailyRevenue, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *MemoryStore) BusinessMetrics(_ context.Context) (*models.BusinessMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	metrics := &models.BusinessMetrics{}
	byStatus := make(map[string]int64)
	for _, o := range m.orders {
		metrics.TotalRevenue += o.Total
		metrics.TotalOrders++
		byStatus[o.Status]++
	}
	if metrics.TotalOrders > 0 {
		metrics.AvgOrderValue = metrics.TotalRevenue / float64(metrics.TotalOrders)
	}
	for status, count := range byStatus {
		metrics.OrdersByStatus = append(metrics.OrdersByStatus, models.StatusCount{Status: status, Count: count})
	}
	sort.Slice(metrics.OrdersByStatus, func(i, j int) bool {
		return metrics.OrdersByStatus[i].Status < metrics.OrdersByStatus[j].Status
	})
	return metrics, nil
}

// ── Customer Store ──────────────────────────────────────────

func (m *MemoryStore) ListCustomers(_ context.Context) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MemoryStore) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "customer", Key: id}
	}
	copy := *c
	return &copy, nil
}

func (m *MemoryStore) GetCustomerByEmail(_ context.Context, email string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(email)
	for _, c := range m.customers {
		if strings.ToLower(c.Email) == needle {
			copy := *c
			return &copy, nil
		}
	}
	return nil, &ErrNotFound{Entity: "customer", Key: email}
}

func (m *MemoryStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *customer
	m.customers[customer.ID] = &copy
	return nil
}

// ── Conversation Store ──────────────────────────────────────

func (m *MemoryStore) AppendTurn(_ context.Context, turn *models.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *turn
	m.turns[turn.SessionID] = append(m.turns[turn.SessionID], &copy)
	return nil
}

func (m *MemoryStore) RecentTurns(_ context.Context, sessionID string, limit int) ([]models.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.turns[sessionID]
	start := 0
	if limit > 0 && len(log) > limit {
		start = len(log) - limit
	}
	result := make([]models.Turn, 0, len(log)-start)
	for _, t := range log[start:] {
		result = append(result, *t)
	}
	return result, nil
}

// ── Assistant Log Store ─────────────────────────────────────

func (m *MemoryStore) AppendAssistantLog(_ context.Context, entry *models.AssistantLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.logs = append(m.logs, &copy)
	return nil
}

func (m *MemoryStore) AssistantStats(_ context.Context) (*models.AssistantStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &models.AssistantStats{TotalQueries: int64(len(m.logs))}
	intentCounts := make(map[models.Intent]int64)
	fnCounts := make(map[string]int64)
	timingSums := make(map[models.Intent]int64)
	for _, l := range m.logs {
		intentCounts[l.Intent]++
		timingSums[l.Intent] += l.ProcessingTimeMs
		for _, fc := range l.FunctionsCalled {
			fnCounts[fc.Name]++
		}
	}
	for intent, count := range intentCounts {
		stats.IntentDistribution = append(stats.IntentDistribution, models.IntentCount{Intent: intent, Count: count})
		stats.AvgTimings = append(stats.AvgTimings, models.IntentTiming{
			Intent:            intent,
			AvgResponseTimeMs: float64(timingSums[intent]) / float64(count),
		})
	}
	for name, count := range fnCounts {
		stats.FunctionCalls = append(stats.FunctionCalls, models.FunctionCount{FunctionName: name, Count: count})
	}
	sort.Slice(stats.IntentDistribution, func(i, j int) bool {
		a, b := stats.IntentDistribution[i], stats.IntentDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Intent < b.Intent
	})
	sort.Slice(stats.FunctionCalls, func(i, j int) bool {
		a, b := stats.FunctionCalls[i], stats.FunctionCalls[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.FunctionName < b.FunctionName
	})
	sort.Slice(stats.AvgTimings, func(i, j int) bool {
		return stats.AvgTimings[i].Intent < stats.AvgTimings[j].Intent
	})
	return stats, nil
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
