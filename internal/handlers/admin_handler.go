package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/logger"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

type AdminHandler struct {
	store storage.Storage
	cache cache.Cache
}

func NewAdminHandler(store storage.Storage, c cache.Cache) *AdminHandler {
	return &AdminHandler{store: store, cache: c}
}

type adminStats struct {
	Users       int `json:"users"`
	Subscribers int `json:"subscribers"`
	Stories     int `json:"stories"`
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var cached adminStats
	if found, err := h.cache.Get(ctx, statsCacheKey, &cached); err == nil && found {
		response.Success(c, http.StatusOK, cached)
		return
	}

	users, err := h.store.CountUsers(ctx)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	subscribers, err := h.store.CountSubscribers(ctx)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	stories, err := h.store.CountStories(ctx)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}

	stats := adminStats{Users: users, Subscribers: subscribers, Stories: stories}
	if err := h.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		logger.Error("failed to cache admin stats", err)
	}
	response.Success(c, http.StatusOK, stats)
}
