package handlers

import (
	"context"
	"fmt"
	"net/http"

	recordsRepo "nestmart/database/repository/records"
	"nestmart/models"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StatsHandler reports collection sizes for the dashboard.
type StatsHandler struct {
	Products   recordsRepo.DocumentRepository
	Properties recordsRepo.DocumentRepository
	Blogs      recordsRepo.DocumentRepository
	Reviews    recordsRepo.DocumentRepository
	Users      recordsRepo.DocumentRepository

	// Cache is optional.
	Cache *redis.Client
}

// GetStatsHandler handles GET /states.
func (h *StatsHandler) GetStatsHandler(c *gin.Context) {
	logger := getLogger(c)
	ctx := c.Request.Context()

	var stats models.Stats
	if h.Cache != nil {
		hit, err := utils.GetCachedJSON(ctx, h.Cache, utils.StatsCacheKey, &stats)
		if err != nil {
			logger.Warn("stats cache read failed", zap.Error(err))
		}
		if hit {
			c.JSON(http.StatusOK, stats)
			return
		}
	}

	stats, err := h.count(ctx)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to count documents", err.Error())
		return
	}

	if h.Cache != nil {
		if err := utils.SetCachedJSON(ctx, h.Cache, utils.StatsCacheKey, stats, utils.StatsCacheTTL); err != nil {
			logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) count(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	targets := []struct {
		name string
		repo recordsRepo.DocumentRepository
		dst  *int64
	}{
		{"products", h.Products, &stats.Products},
		{"properties", h.Properties, &stats.Properties},
		{"blogs", h.Blogs, &stats.Blogs},
		{"reviews", h.Reviews, &stats.Reviews},
		{"users", h.Users, &stats.Users},
	}
	for _, t := range targets {
		n, err := t.repo.EstimatedCount(ctx)
		if err != nil {
			return stats, fmt.Errorf("count %s: %w", t.name, err)
		}
		*t.dst = n
	}
	return stats, nil
}
