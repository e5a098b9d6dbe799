package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shoplite/shoplite/api/internal/api/handlers"
	"github.com/shoplite/shoplite/api/internal/api/middleware"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(h.Version))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{productId}", h.GetProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", h.GetOrder)
				r.Get("/stream", h.StreamOrder)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.LookupCustomer)
			r.Get("/{customerId}", h.GetCustomer)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/daily-revenue", h.DailyRevenue)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/business-metrics", h.BusinessMetrics)
			r.Get("/assistant-stats", h.AssistantStats)
			r.Get("/performance", h.Performance)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/chat", h.Chat)
			r.Get("/functions", h.ListFunctions)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "shoplite-api",
	})
}

func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": version,
			"service": "shoplite-api",
		})
	}
}
