package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/frontier/pkg/database"
	"github.com/wonny/frontier/pkg/redis"
)

// HealthHandler reports service and backing store status
type HealthHandler struct {
	db      *database.DB  // nil = price store disabled
	redis   *redis.Client // nil or disabled = cache off
	service string
}

// NewHealthHandler creates a health handler. db and rc may be nil.
func NewHealthHandler(db *database.DB, rc *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rc, service: "frontier-api"}
}

// Check returns 200 when every enabled dependency answers, 503 otherwise
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := map[string]interface{}{}

	if h.db != nil {
		hs, err := h.db.HealthCheck(ctx)
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		components["price_store"] = hs
	} else {
		components["price_store"] = "disabled"
	}

	if h.redis.Enabled() {
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			components["price_cache"] = map[string]string{"error": err.Error()}
		} else {
			components["price_cache"] = "ok"
		}
	} else {
		components["price_cache"] = "disabled"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":     overall,
		"service":    h.service,
		"components": components,
	})
}
