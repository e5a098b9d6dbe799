package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/api/pkg/models"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	require.NoError(t, err)
	return parsed
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	m := NewMemoryStore()

	products := []models.Product{
		{ID: "p1", Name: "Curved Gaming Monitor", Description: "144Hz", Price: 279.95, Tags: []string{"Gaming"}},
		{ID: "p2", Name: "Insulated Water Bottle", Description: "Keeps drinks cold", Price: 29.95, Tags: []string{"Outdoors"}},
		{ID: "p3", Name: "Next-Gen Gaming Console", Description: "Fast SSD", Price: 499.99, Tags: []string{"Gaming"}},
	}
	for i := range products {
		require.NoError(t, m.CreateProduct(ctx, &products[i]))
	}

	require.NoError(t, m.CreateCustomer(ctx, &models.Customer{ID: "c1", Name: "Demo User", Email: "Demo@Example.com"}))

	orders := []models.Order{
		{ID: "o1", CustomerID: "c1", Total: 100, Status: models.OrderDelivered, CreatedAt: day(t, "2026-08-01")},
		{ID: "o2", CustomerID: "c1", Total: 50, Status: models.OrderPending, CreatedAt: day(t, "2026-08-02")},
		{ID: "o3", CustomerID: "c2", Total: 30, Status: models.OrderPending, CreatedAt: day(t, "2026-08-02").Add(6 * time.Hour)},
	}
	for i := range orders {
		require.NoError(t, m.CreateOrder(ctx, &orders[i]))
	}
	return m
}

func TestListProductsFilterAndSort(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	t.Run("default sorts by name", func(t *testing.T) {
		products, err := m.ListProducts(ctx, ProductFilter{})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Curved Gaming Monitor", products[0].Name)
		assert.Equal(t, "Next-Gen Gaming Console", products[2].Name)
	})

	t.Run("search matches name or description", func(t *testing.T) {
		products, err := m.ListProducts(ctx, ProductFilter{Search: "cold"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "p2", products[0].ID)
	})

	t.Run("tag filter", func(t *testing.T) {
		products, err := m.ListProducts(ctx, ProductFilter{Tag: "Gaming", Sort: "price-desc"})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "p3", products[0].ID)
		assert.Equal(t, "p1", products[1].ID)
	})

	t.Run("price ascending", func(t *testing.T) {
		products, err := m.ListProducts(ctx, ProductFilter{Sort: "price-asc"})
		require.NoError(t, err)
		assert.Equal(t, "p2", products[0].ID)
	})
}

func TestNotFoundErrors(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	var nf *ErrNotFound
	_, err := m.GetProduct(ctx, "nope")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)

	_, err = m.GetOrder(ctx, "nope")
	assert.ErrorAs(t, err, &nf)

	_, err = m.GetCustomerByEmail(ctx, "nobody@example.com")
	assert.ErrorAs(t, err, &nf)

	err = m.UpdateOrderStatus(ctx, "nope", models.OrderShipped, "", nil)
	assert.ErrorAs(t, err, &nf)
}

func TestGetCustomerByEmailIsCaseInsensitive(t *testing.T) {
	m := seedStore(t)
	c, err := m.GetCustomerByEmail(context.Background(), "demo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}

func TestUpdateOrderStatus(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()
	eta := time.Now().UTC().Add(72 * time.Hour)

	require.NoError(t, m.UpdateOrderStatus(ctx, "o2", models.OrderShipped, "FedEx", &eta))

	o, err := m.GetOrder(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, o.Status)
	assert.Equal(t, "FedEx", o.Carrier)
	require.NotNil(t, o.EstimatedDelivery)
	assert.True(t, o.EstimatedDelivery.Equal(eta))

	// Empty carrier and nil eta leave the previous values in place.
	require.NoError(t, m.UpdateOrderStatus(ctx, "o2", models.OrderDelivered, "", nil))
	o, err = m.GetOrder(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, "FedEx", o.Carrier)
	assert.NotNil(t, o.EstimatedDelivery)
}

func TestOrderAggregations(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	count, err := m.CountOrdersByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	agg, err := m.SumOrdersByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, &models.OrderAggregate{TotalSpent: 150, OrderCount: 2}, agg)

	last, err := m.LastOrderByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "o2", last.ID)

	orders, err := m.ListOrdersByCustomer(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o2", orders[0].ID)
}

func TestDailyRevenue(t *testing.T) {
	m := seedStore(t)

	revenue, err := m.DailyRevenue(context.Background(), day(t, "2026-08-01"), day(t, "2026-08-02").Add(24*time.Hour-time.Nanosecond))
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.Equal(t, models.DailyRevenue{Date: "2026-08-01", Revenue: 100, OrderCount: 1}, revenue[0])
	assert.Equal(t, models.DailyRevenue{Date: "2026-08-02", Revenue: 80, OrderCount: 2}, revenue[1])

	// A range before the data yields no buckets.
	revenue, err = m.DailyRevenue(context.Background(), day(t, "2026-07-01"), day(t, "2026-07-31"))
	require.NoError(t, err)
	assert.Empty(t, revenue)
}

func TestBusinessMetrics(t *testing.T) {
	m := seedStore(t)

	metrics, err := m.BusinessMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(180), metrics.TotalRevenue)
	assert.Equal(t, int64(3), metrics.TotalOrders)
	assert.InDelta(t, 60, metrics.AvgOrderValue, 0.001)
	assert.Equal(t, []models.StatusCount{
		{Status: models.OrderDelivered, Count: 1},
		{Status: models.OrderPending, Count: 2},
	}, metrics.OrdersByStatus)
}

func TestRecentTurnsWindow(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for i, content := range []string{"one", "two", "three", "four"} {
		require.NoError(t, m.AppendTurn(ctx, &models.Turn{
			ID:        string(rune('a' + i)),
			SessionID: "s1",
			Role:      models.RoleUser,
			Content:   content,
		}))
	}

	turns, err := m.RecentTurns(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	// Newest two, in chronological order.
	assert.Equal(t, "three", turns[0].Content)
	assert.Equal(t, "four", turns[1].Content)

	turns, err = m.RecentTurns(ctx, "other", 2)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAssistantStatsAggregation(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	logs := []models.AssistantLog{
		{ID: "l1", Intent: models.IntentChitchat, ProcessingTimeMs: 10},
		{ID: "l2", Intent: models.IntentPolicyQuestion, ProcessingTimeMs: 30},
		{ID: "l3", Intent: models.IntentPolicyQuestion, ProcessingTimeMs: 50,
			FunctionsCalled: []models.FunctionCall{{Name: "searchProducts"}}},
	}
	for i := range logs {
		require.NoError(t, m.AppendAssistantLog(ctx, &logs[i]))
	}

	stats, err := m.AssistantStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalQueries)

	require.Len(t, stats.IntentDistribution, 2)
	assert.Equal(t, models.IntentCount{Intent: models.IntentPolicyQuestion, Count: 2}, stats.IntentDistribution[0])
	assert.Equal(t, models.IntentCount{Intent: models.IntentChitchat, Count: 1}, stats.IntentDistribution[1])

	require.Len(t, stats.FunctionCalls, 1)
	assert.Equal(t, models.FunctionCount{FunctionName: "searchProducts", Count: 1}, stats.FunctionCalls[0])

	require.Len(t, stats.AvgTimings, 2)
	assert.Equal(t, models.IntentChitchat, stats.AvgTimings[0].Intent)
	assert.InDelta(t, 40, stats.AvgTimings[1].AvgResponseTimeMs, 0.001)
}

func TestCopyOnReadIsolation(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	p, err := m.GetProduct(ctx, "p1")
	require.NoError(t, err)
	p.Name = "mutated"

	again, err := m.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Curved Gaming Monitor", again.Name)
}

func TestErrNotFoundMessage(t *testing.T) {
	err := &ErrNotFound{Entity: "order", Key: "o9"}
	assert.Contains(t, err.Error(), "order")
	assert.Contains(t, err.Error(), "o9")
	assert.False(t, errors.Is(err, context.Canceled))
}
