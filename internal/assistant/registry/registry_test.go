package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

const (
	testOrderID    = "64d2f2c3e4f5a6b7c8d90001"
	testCustomerID = "64c1e1b2d3e4f5a6b7c80001"
)

func seededRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{
		ID:    testCustomerID,
		Name:  "Demo User",
		Email: "demo@example.com",
	}))
	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		ID:    "64b0f0a1c2d3e4f5a6b70001",
		Name:  "Portable Bluetooth Speaker",
		Price: 89.99,
		Stock: 110,
	}))
	require.NoError(t, st.CreateOrder(ctx, &models.Order{
		ID:         testOrderID,
		CustomerID: testCustomerID,
		Total:      89.99,
		Status:     models.OrderShipped,
		CreatedAt:  time.Now().UTC(),
	}))
	return New(st), st
}

func TestExecuteUnknownFunction(t *testing.T) {
	reg, _ := seededRegistry(t)

	_, err := reg.Execute(context.Background(), "launchRocket", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "launchRocket", callErr.Name)
}

func TestGetOrderStatus(t *testing.T) {
	reg, _ := seededRegistry(t)
	ctx := context.Background()

	t.Run("existing order", func(t *testing.T) {
		result, err := reg.Execute(ctx, "getOrderStatus", map[string]any{"orderId": testOrderID})
		require.NoError(t, err)
		order, ok := result.(*models.Order)
		require.True(t, ok)
		assert.Equal(t, models.OrderShipped, order.Status)
	})

	t.Run("malformed id yields quiet nil", func(t *testing.T) {
		result, err := reg.Execute(ctx, "getOrderStatus", map[string]any{"orderId": "12345"})
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("unknown id yields quiet nil", func(t *testing.T) {
		result, err := reg.Execute(ctx, "getOrderStatus", map[string]any{"orderId": "ffffffffffffffffffffffff"})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestCustomerFunctionsWithUnknownEmail(t *testing.T) {
	reg, _ := seededRegistry(t)
	ctx := context.Background()
	args := map[string]any{"email": "nobody@example.com"}

	orders, err := reg.Execute(ctx, "getCustomerOrders", args)
	require.NoError(t, err)
	assert.Equal(t, []models.Order{}, orders)

	count, err := reg.Execute(ctx, "countCustomerOrders", args)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	agg, err := reg.Execute(ctx, "getTotalSpendings", args)
	require.NoError(t, err)
	assert.Equal(t, &models.OrderAggregate{}, agg)

	last, err := reg.Execute(ctx, "getLastOrder", args)
	require.NoError(t, err)
	assert.Nil(t, last)

	account, err := reg.Execute(ctx, "getAccountDetails", args)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestCustomerFunctions(t *testing.T) {
	reg, _ := seededRegistry(t)
	ctx := context.Background()
	args := map[string]any{"email": "demo@example.com"}

	count, err := reg.Execute(ctx, "countCustomerOrders", args)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	agg, err := reg.Execute(ctx, "getTotalSpendings", args)
	require.NoError(t, err)
	assert.Equal(t, &models.OrderAggregate{TotalSpent: 89.99, OrderCount: 1}, agg)

	last, err := reg.Execute(ctx, "getLastOrder", args)
	require.NoError(t, err)
	order, ok := last.(*models.Order)
	require.True(t, ok)
	assert.Equal(t, testOrderID, order.ID)

	account, err := reg.Execute(ctx, "getAccountDetails", args)
	require.NoError(t, err)
	customer, ok := account.(*models.Customer)
	require.True(t, ok)
	assert.Equal(t, "Demo User", customer.Name)
}

func TestGetProductStockByName(t *testing.T) {
	reg, _ := seededRegistry(t)
	ctx := context.Background()

	result, err := reg.Execute(ctx, "getProductStockByName", map[string]any{"productName": "speaker"})
	require.NoError(t, err)
	assert.Equal(t, &StockInfo{Name: "Portable Bluetooth Speaker", Stock: 110}, result)

	result, err = reg.Execute(ctx, "getProductStockByName", map[string]any{"productName": "zeppelin"})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestStoreFailureWrappedInCallError(t *testing.T) {
	boom := errors.New("connection reset")
	reg := New(&failingStore{err: boom})

	_, err := reg.Execute(context.Background(), "getOrderStatus", map[string]any{"orderId": testOrderID})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "getOrderStatus", callErr.Name)
}

func TestSchemasInRegistrationOrder(t *testing.T) {
	reg, _ := seededRegistry(t)

	schemas := reg.Schemas()
	require.Len(t, schemas, 9)
	assert.Equal(t, "getOrderStatus", schemas[0].Name)
	assert.Equal(t, "getAccountDetails", schemas[8].Name)
	for _, s := range schemas {
		assert.NotEmpty(t, s.Description, s.Name)
	}
}

// failingStore fails every order lookup. The embedded interface covers the
// methods the tests never reach.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) GetOrder(_ context.Context, _ string) (*models.Order, error) {
	return nil, f.err
}
