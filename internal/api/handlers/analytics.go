package handlers

import (
	"net/http"
	"runtime"
	"time"
)

// ── Analytics Handlers ──────────────────────────────────────

// DailyRevenue buckets revenue and order counts per day over an inclusive
// date range supplied as from/to query parameters (YYYY-MM-DD).
func (h *Handlers) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		respondError(w, http.StatusBadRequest, "Date range parameters 'from' and 'to' are required.")
		return
	}
	from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}
	// Make the end date inclusive of the entire day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	revenue, err := h.Store.DailyRevenue(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, revenue)
}

// ── Dashboard Handlers ──────────────────────────────────────

func (h *Handlers) BusinessMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.Store.BusinessMetrics(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch business metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (h *Handlers) AssistantStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.AssistantStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch assistant stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Performance reports process-level counters for the ops dashboard.
func (h *Handlers) Performance(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStatus := "ok"
	if err := h.Store.Ping(r.Context()); err != nil {
		dbStatus = "unreachable"
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"uptimeSeconds": int64(time.Since(h.StartedAt).Seconds()),
		"goroutines":    runtime.NumGoroutine(),
		"heapAllocMB":   float64(mem.HeapAlloc) / (1 << 20),
		"dbConnection":  dbStatus,
	})
}
