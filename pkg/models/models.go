// Package models defines the shared data types for the Shoplite support API:
// catalog entities, the conversation log, the static assistant configuration
// documents, and the structured assistant response.
package models

import "time"

// ── Intents ─────────────────────────────────────────────────

// Intent is the discrete category assigned to a user query. It drives which
// context-gathering branch and which prompt directives apply.
type Intent string

const (
	IntentOrderStatus    Intent = "order_status"
	IntentOrderCount     Intent = "order_count"
	IntentProductSearch  Intent = "product_search"
	IntentProductCount   Intent = "product_count"
	IntentTotalSpendings Intent = "total_spendings"
	IntentLastOrder      Intent = "last_order"
	IntentAccountDetails Intent = "account_details"
	IntentPolicyQuestion Intent = "policy_question"
	IntentComplaint      Intent = "complaint"
	IntentChitchat       Intent = "chitchat"
	IntentOffTopic       Intent = "off_topic"
	IntentViolation      Intent = "violation"
)

// ── Catalog ─────────────────────────────────────────────────

// Product is one item in the store catalog. IDs are 24-character hex tokens
// (the document-store identifier shape the rest of the system expects).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"imageUrl"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Customer is a store customer. There is no password — the demo "login" is a
// plain email lookup.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order lifecycle statuses, in the order the SSE simulator advances them.
const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is a customer order.
type Order struct {
	ID                string      `json:"id"`
	CustomerID        string      `json:"customerId"`
	Items             []OrderItem `json:"items"`
	Total             float64     `json:"total"`
	Status            string      `json:"status"`
	Carrier           string      `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// OrderAggregate is the spend summary for one customer.
type OrderAggregate struct {
	TotalSpent float64 `json:"totalSpent"`
	OrderCount int64   `json:"orderCount"`
}

// ── Conversation log ────────────────────────────────────────

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a session's conversation log. Turns are append-only
// and immutable once written.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ── Static assistant configuration ──────────────────────────

// PolicyDoc is one entry of the static policy knowledge base. IDs follow the
// citation token shape, e.g. "Returns1.1".
type PolicyDoc struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// IntentDirective is the per-intent behavioral instruction for the generator.
type IntentDirective struct {
	Behavior string `yaml:"behavior" json:"behavior"`
	Tone     string `yaml:"tone" json:"tone"`
}

// Identity is who the assistant claims to be.
type Identity struct {
	Name        string `yaml:"name" json:"name"`
	Role        string `yaml:"role" json:"role"`
	Personality string `yaml:"personality" json:"personality"`
}

// Persona is the full behavior configuration document, loaded once at
// startup. The process refuses to serve without it.
type Persona struct {
	Identity Identity                   `yaml:"identity" json:"identity"`
	NeverSay []string                   `yaml:"never_say" json:"never_say"`
	Intents  map[Intent]IntentDirective `yaml:"intents" json:"intents"`
}

// ── Assistant response ──────────────────────────────────────

// FunctionCall records one registry function executed while gathering
// context for a response.
type FunctionCall struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// CitationReport classifies every citation token found in a generated
// response as grounded in the supplied context or hallucinated.
type CitationReport struct {
	IsValid bool     `json:"isValid"`
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
}

// AssistantResult is the structured payload returned for one chat turn.
type AssistantResult struct {
	Text            string         `json:"text"`
	Intent          Intent         `json:"intent"`
	FunctionsCalled []FunctionCall `json:"functionsCalled"`
	Citations       CitationReport `json:"citations"`
}

// AssistantLog is the per-query analytics record the engine appends
// best-effort after every handled turn.
type AssistantLog struct {
	ID               string         `json:"id"`
	SessionID        string         `json:"sessionId"`
	Intent           Intent         `json:"intent"`
	FunctionsCalled  []FunctionCall `json:"functionsCalled"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// ── Analytics / dashboard ───────────────────────────────────

// DailyRevenue is one bucket of the daily revenue aggregation.
type DailyRevenue struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int64   `json:"orderCount"`
}

// StatusCount is the number of orders currently in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// BusinessMetrics is the storewide dashboard summary.
type BusinessMetrics struct {
	TotalRevenue   float64       `json:"totalRevenue"`
	TotalOrders    int64         `json:"totalOrders"`
	AvgOrderValue  float64       `json:"avgOrderValue"`
	OrdersByStatus []StatusCount `json:"ordersByStatus"`
}

// IntentCount is how often one intent was classified.
type IntentCount struct {
	Intent Intent `json:"intent"`
	Count  int64  `json:"count"`
}

// FunctionCount is how often one registry function was executed.
type FunctionCount struct {
	FunctionName string `json:"functionName"`
	Count        int64  `json:"count"`
}

// IntentTiming is the average processing time for one intent.
type IntentTiming struct {
	Intent            Intent  `json:"intent"`
	AvgResponseTimeMs float64 `json:"avgResponseTime"`
}

// AssistantStats is the assistant analytics dashboard payload.
type AssistantStats struct {
	TotalQueries       int64           `json:"totalQueries"`
	IntentDistribution []IntentCount   `json:"intentDistribution"`
	FunctionCalls      []FunctionCount `json:"functionCalls"`
	AvgTimings         []IntentTiming  `json:"avgTimings"`
}
