package handlers

import (
	"github.com/gofiber/fiber/v2"

	"photomap-service/internal/cache"
)

// CacheHandler reports on the cache layers shared by the services.
type CacheHandler struct {
	layers []cache.Layer
}

func NewCacheHandler(layers ...cache.Layer) *CacheHandler {
	return &CacheHandler{layers: layers}
}

// GetCacheStats handles GET /cache/stats to retrieve cache statistics
// @Summary Get cache statistics
// @Description Hit and miss counters of every cache layer
// @Tags cache
// @Produce json
// @Success 200 {array} cache.LayerStats "Cache statistics"
// @Router /cache/stats [get]
func (h *CacheHandler) GetCacheStats(c *fiber.Ctx) error {
	stats := make([]cache.LayerStats, 0, len(h.layers))
	for _, layer := range h.layers {
		stats = append(stats, layer.GetStats())
	}
	return c.JSON(stats)
}
