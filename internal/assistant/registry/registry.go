// Package registry is the catalogue of named, schema-described read
// operations the assistant may invoke to ground its answers. The table is
// fixed at construction; each entry carries a declarative parameter schema
// for an LLM tool-calling layer plus an executor bound to the store.
package registry

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

// Property describes one parameter of a registered function.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Schema is the declarative description of a registered function.
type Schema struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Properties  map[string]Property `json:"properties"`
	Required    []string            `json:"required"`
}

// CallError wraps a store failure with the name of the function that hit
// it. The engine catches it and degrades to an apologetic context string.
type CallError struct {
	Name string
	Err  error
}

func (e *CallError) Error() string { return "function " + e.Name + ": " + e.Err.Error() }
func (e *CallError) Unwrap() error { return e.Err }

// ErrNotRegistered is returned (wrapped in a CallError) when a function
// name has no registry entry.
var ErrNotRegistered = errors.New("not registered")

// StockInfo is the result shape of getProductStockByName.
type StockInfo struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type entry struct {
	schema Schema
	exec   func(ctx context.Context, args map[string]any) (any, error)
}

// Registry executes read operations against the store by name.
type Registry struct {
	store   store.Store
	entries map[string]entry
	order   []string
}

// hexIDPattern is the document-store identifier shape. Arguments that do
// not match it came from classifier over-extraction and yield a quiet
// empty result rather than a store round trip.
var hexIDPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

func validID(id string) bool {
	return hexIDPattern.MatchString(strings.ToLower(id))
}

// New builds the registry with its fixed function table.
func New(st store.Store) *Registry {
	r := &Registry{store: st, entries: make(map[string]entry)}

	r.add(Schema{
		Name:        "getOrderStatus",
		Description: "Gets the status and details of a specific order by its ID.",
		Properties: map[string]Property{
			"orderId": {Type: "string", Description: "The 24-character hexadecimal order ID."},
		},
		Required: []string{"orderId"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		id := argString(args, "orderId")
		if !validID(id) {
			return nil, nil
		}
		order, err := st.GetOrder(ctx, id)
		if isNotFound(err) {
			return nil, nil
		}
		return order, err
	})

	r.add(Schema{
		Name:        "searchProducts",
		Description: "Searches the product catalog for items matching a query.",
		Properties: map[string]Property{
			"query": {Type: "string", Description: "The search term (e.g., 'red shoes', 'smart watch')."},
			"limit": {Type: "integer", Description: "Maximum number of products to return.", Default: 3},
		},
		Required: []string{"query"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return st.SearchProducts(ctx, argString(args, "query"), argInt(args, "limit", 3))
	})

	r.add(Schema{
		Name:        "getCustomerOrders",
		Description: "Gets the order history for a customer based on their email address.",
		Properties: map[string]Property{
			"email": {Type: "string", Description: "The customer's email address."},
			"limit": {Type: "integer", Description: "Maximum number of orders to return.", Default: 5},
		},
		Required: []string{"email"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		customer, err := st.GetCustomerByEmail(ctx, argString(args, "email"))
		if isNotFound(err) {
			return []models.Order{}, nil
		}
		if err != nil {
			return nil, err
		}
		return st.ListOrdersByCustomer(ctx, customer.ID, argInt(args, "limit", 5))
	})

	r.add(Schema{
		Name:        "countAllProducts",
		Description: "Counts the total number of products available in the store catalog.",
		Properties:  map[string]Property{},
		Required:    []string{},
	}, func(ctx context.Context, _ map[string]any) (any, error) {
		return st.CountProducts(ctx)
	})

	r.add(Schema{
		Name:        "countCustomerOrders",
		Description: "Counts how many orders a customer has placed.",
		Properties: map[string]Property{
			"email": {Type: "string", Description: "The customer's email address."},
		},
		Required: []string{"email"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		customer, err := st.GetCustomerByEmail(ctx, argString(args, "email"))
		if isNotFound(err) {
			return int64(0), nil
		}
		if err != nil {
			return nil, err
		}
		return st.CountOrdersByCustomer(ctx, customer.ID)
	})

	r.add(Schema{
		Name:        "getTotalSpendings",
		Description: "Calculates the total amount spent and number of orders for a customer.",
		Properties: map[string]Property{
			"email": {Type: "string", Description: "The customer's email address."},
		},
		Required: []string{"email"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		customer, err := st.GetCustomerByEmail(ctx, argString(args, "email"))
		if isNotFound(err) {
			return &models.OrderAggregate{}, nil
		}
		if err != nil {
			return nil, err
		}
		return st.SumOrdersByCustomer(ctx, customer.ID)
	})

	r.add(Schema{
		Name:        "getLastOrder",
		Description: "Retrieves the details of the most recent order placed by a customer.",
		Properties: map[string]Property{
			"email": {Type: "string", Description: "The customer's email address."},
		},
		Required: []string{"email"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		customer, err := st.GetCustomerByEmail(ctx, argString(args, "email"))
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		order, err := st.LastOrderByCustomer(ctx, customer.ID)
		if isNotFound(err) {
			return nil, nil
		}
		return order, err
	})

	r.add(Schema{
		Name:        "getProductStockByName",
		Description: "Checks the current stock level for a specific product by its name.",
		Properties: map[string]Property{
			"productName": {Type: "string", Description: "The name (or partial name) of the product."},
		},
		Required: []string{"productName"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		matches, err := st.SearchProducts(ctx, argString(args, "productName"), 1)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, nil
		}
		return &StockInfo{Name: matches[0].Name, Stock: matches[0].Stock}, nil
	})

	r.add(Schema{
		Name:        "getAccountDetails",
		Description: "Retrieves the account details (name, email, address, phone) for the logged-in customer.",
		Properties: map[string]Property{
			"email": {Type: "string", Description: "The customer's email address."},
		},
		Required: []string{"email"},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		customer, err := st.GetCustomerByEmail(ctx, argString(args, "email"))
		if isNotFound(err) {
			return nil, nil
		}
		return customer, err
	})

	return r
}

func (r *Registry) add(schema Schema, exec func(context.Context, map[string]any) (any, error)) {
	r.entries[schema.Name] = entry{schema: schema, exec: exec}
	r.order = append(r.order, schema.Name)
}

// Execute runs a registered function by name. Store failures come back as
// a *CallError carrying the function name; a nil result with a nil error
// means "nothing found" and is a valid outcome.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &CallError{Name: name, Err: ErrNotRegistered}
	}
	result, err := e.exec(ctx, args)
	if err != nil {
		return nil, &CallError{Name: name, Err: err}
	}
	return result, nil
}

// Schemas returns the declarative schemas of every registered function in
// registration order.
func (r *Registry) Schemas() []Schema {
	out := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].schema)
	}
	return out
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func isNotFound(err error) bool {
	var nf *store.ErrNotFound
	return errors.As(err, &nf)
}
