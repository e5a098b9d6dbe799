// Package handlers implements the HTTP handlers for the Shoplite API:
// catalog, orders, customers, analytics, and the support assistant.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shoplite/shoplite/api/internal/assistant"
	"github.com/shoplite/shoplite/api/internal/assistant/registry"
	"github.com/shoplite/shoplite/api/internal/sse"
	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store     store.Store
	Engine    *assistant.Engine
	Registry  *registry.Registry
	Simulator *sse.Simulator
	Version   string
	StartedAt time.Time
}

// New creates a Handlers instance with all dependencies.
func New(st store.Store, eng *assistant.Engine, reg *registry.Registry, sim *sse.Simulator, version string) *Handlers {
	return &Handlers{
		Store:     st,
		Engine:    eng,
		Registry:  reg,
		Simulator: sim,
		Version:   version,
		StartedAt: time.Now(),
	}
}

// hexIDPattern is the entity id shape used across the API.
var hexIDPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

func validID(id string) bool { return hexIDPattern.MatchString(id) }

// ── Product Handlers ────────────────────────────────────────

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Sort:   r.URL.Query().Get("sort"),
	}
	products, err := h.Store.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	if !validID(id) {
		respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl"`
	Stock       int      `json:"stock"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Price <= 0 || req.Category == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: name, price, and category are required.")
		return
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:          newEntityID(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if err := h.Store.CreateProduct(r.Context(), product); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// ── Customer Handlers ───────────────────────────────────────

// LookupCustomer is the demo "login": a bare email lookup with no
// credential check.
func (h *Handlers) LookupCustomer(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email query parameter is required")
		return
	}
	customer, err := h.Store.GetCustomerByEmail(r.Context(), email)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerId")
	if !validID(id) {
		respondError(w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}
	customer, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// ── Helpers ─────────────────────────────────────────────────

// newEntityID mints a 24-hex entity identifier from a fresh UUID.
func newEntityID() string {
	u := uuid.New()
	const hexdigits = "0123456789abcdef"
	buf := make([]byte, 24)
	for i := 0; i < 12; i++ {
		buf[2*i] = hexdigits[u[i]>>4]
		buf[2*i+1] = hexdigits[u[i]&0x0f]
	}
	return string(buf)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps ErrNotFound to 404 and everything else to 500.
func respondStoreError(w http.ResponseWriter, err error) {
	var nf *store.ErrNotFound
	if errors.As(err, &nf) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
