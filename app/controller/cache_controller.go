package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"wavewall-mockups/service"
)

// CacheController handles HTTP requests for cache administration.
type CacheController struct {
	cache *service.MockupCache
}

// NewCacheController creates a new CacheController.
func NewCacheController(cache *service.MockupCache) *CacheController {
	return &CacheController{cache: cache}
}

// Stats handles GET /api/cache/stats.
func (c *CacheController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.cache.GetStats()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, stats)
}

// Cleanup handles POST /api/cache/cleanup?maxAgeHours=N, removing entries
// older than the threshold (default 7 days).
func (c *CacheController) Cleanup(w http.ResponseWriter, r *http.Request) {
	maxAge := 7 * 24 * time.Hour
	if raw := r.URL.Query().Get("maxAgeHours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 0 {
			respondError(w, r, http.StatusBadRequest, "maxAgeHours must be a non-negative integer")
			return
		}
		maxAge = time.Duration(hours) * time.Hour
	}

	removed, err := c.cache.Cleanup(maxAge)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, map[string]int{"removed": removed})
}

// Clear handles DELETE /api/cache.
func (c *CacheController) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.cache.Clear(); err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
