package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/shoplite/api/internal/api/handlers"
	"github.com/shoplite/shoplite/api/internal/assistant"
	"github.com/shoplite/shoplite/api/internal/assistant/knowledge"
	"github.com/shoplite/shoplite/api/internal/assistant/prompt"
	"github.com/shoplite/shoplite/api/internal/assistant/registry"
	"github.com/shoplite/shoplite/api/internal/sse"
	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

const (
	testProductID  = "64b0f0a1c2d3e4f5a6b70001"
	testCustomerID = "64c1e1b2d3e4f5a6b7c80001"
	testOrderID    = "64d2f2c3e4f5a6b7c8d90001"
)

type fixedGenerator struct{ text string }

func (f fixedGenerator) Generate(context.Context, string, int) (string, error) {
	return f.text, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	require.NoError(t, st.CreateProduct(ctx, &models.Product{
		ID: testProductID, Name: "Portable Bluetooth Speaker", Price: 89.99,
		Category: "Electronics", Tags: []string{"Audio"}, Stock: 110,
	}))
	require.NoError(t, st.CreateCustomer(ctx, &models.Customer{
		ID: testCustomerID, Name: "Demo User", Email: "demo@example.com",
	}))
	require.NoError(t, st.CreateOrder(ctx, &models.Order{
		ID: testOrderID, CustomerID: testCustomerID, Total: 89.99,
		Status: models.OrderShipped, CreatedAt: time.Now().UTC(),
	}))

	kb := knowledge.NewBase([]models.PolicyDoc{
		{ID: "Returns1.1", Category: "Returns", Answer: "30 day return window."},
	})
	persona := &models.Persona{
		Identity: models.Identity{Name: "Nio", Role: "support assistant"},
		Intents: map[models.Intent]models.IntentDirective{
			models.IntentChitchat: {Tone: "casual"},
		},
	}
	reg := registry.New(st)
	eng := assistant.NewEngine(st, reg, kb, prompt.NewComposer(persona), fixedGenerator{text: "Happy to help!"})
	sim := sse.NewSimulator(st, time.Millisecond, time.Millisecond)

	srv := httptest.NewServer(NewRouter(handlers.New(st, eng, reg, sim, "1.2.0")))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	resp := getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])

	var version map[string]string
	getJSON(t, srv.URL+"/version", &version)
	assert.Equal(t, "1.2.0", version["version"])
}

func TestProductEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list", func(t *testing.T) {
		var products []models.Product
		resp := getJSON(t, srv.URL+"/api/products?search=speaker", &products)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, products, 1)
		assert.Equal(t, testProductID, products[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		var product models.Product
		resp := getJSON(t, srv.URL+"/api/products/"+testProductID, &product)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Portable Bluetooth Speaker", product.Name)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/products/banana", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/products/ffffffffffffffffffffffff", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("create", func(t *testing.T) {
		var product models.Product
		resp := postJSON(t, srv.URL+"/api/products",
			`{"name":"Scented Soy Candle","price":24.5,"category":"Home Decor"}`, &product)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, []string{}, product.Tags)
	})

	t.Run("create missing fields is a 400", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/products", `{"name":"No Price"}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list requires valid customerId", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/orders", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var orders []models.Order
		resp = getJSON(t, srv.URL+"/api/orders?customerId="+testCustomerID, &orders)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, orders, 1)
	})

	t.Run("create", func(t *testing.T) {
		var order models.Order
		resp := postJSON(t, srv.URL+"/api/orders",
			`{"customerId":"`+testCustomerID+`","items":[{"productId":"`+testProductID+`","name":"Portable Bluetooth Speaker","price":89.99,"quantity":1}],"total":89.99}`,
			&order)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, models.OrderPending, order.Status)
	})

	t.Run("get", func(t *testing.T) {
		var order models.Order
		resp := getJSON(t, srv.URL+"/api/orders/"+testOrderID, &order)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, models.OrderShipped, order.Status)
	})
}

func TestCustomerEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var customer models.Customer
	resp := getJSON(t, srv.URL+"/api/customers?email=demo@example.com", &customer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testCustomerID, customer.ID)

	resp = getJSON(t, srv.URL+"/api/customers?email=nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/customers", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("daily revenue requires range", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/analytics/daily-revenue", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = getJSON(t, srv.URL+"/api/analytics/daily-revenue?from=yesterday&to=today", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("daily revenue range is inclusive", func(t *testing.T) {
		today := time.Now().UTC().Format("2006-01-02")
		var revenue []models.DailyRevenue
		resp := getJSON(t, srv.URL+"/api/analytics/daily-revenue?from="+today+"&to="+today, &revenue)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, revenue, 1)
		assert.Equal(t, int64(1), revenue[0].OrderCount)
	})

	t.Run("business metrics", func(t *testing.T) {
		var metrics models.BusinessMetrics
		resp := getJSON(t, srv.URL+"/api/dashboard/business-metrics", &metrics)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(1), metrics.TotalOrders)
	})

	t.Run("performance", func(t *testing.T) {
		var perf map[string]any
		resp := getJSON(t, srv.URL+"/api/dashboard/performance", &perf)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", perf["dbConnection"])
	})
}

func TestAssistantEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("chat", func(t *testing.T) {
		var result models.AssistantResult
		resp := postJSON(t, srv.URL+"/api/assistant/chat",
			`{"query":"hello","sessionId":"s1"}`, &result)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, models.IntentChitchat, result.Intent)
		assert.Equal(t, "Happy to help!", result.Text)
	})

	t.Run("chat validation", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/assistant/chat", `{"sessionId":"s1"}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = postJSON(t, srv.URL+"/api/assistant/chat", `{"query":"hello"}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("function schemas", func(t *testing.T) {
		var schemas []registry.Schema
		resp := getJSON(t, srv.URL+"/api/assistant/functions", &schemas)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, schemas, 9)
		assert.Equal(t, "getOrderStatus", schemas[0].Name)
	})
}

func TestOrderStream(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/orders/" + testOrderID + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var statuses []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var order models.Order
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &order))
		statuses = append(statuses, order.Status)
	}

	// Current state first, then the simulated advance to DELIVERED.
	require.NotEmpty(t, statuses)
	assert.Equal(t, models.OrderShipped, statuses[0])
	assert.Equal(t, models.OrderDelivered, statuses[len(statuses)-1])
}

func TestOrderStreamUnknownOrder(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/orders/ffffffffffffffffffffffff/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	require.True(t, scanner.Scan())
	assert.Equal(t, `data: {"error":"Order not found"}`, scanner.Text())
}
