package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/logger"
)

type RatingHandler struct {
	store storage.Storage
	cache cache.Cache
}

func NewRatingHandler(store storage.Storage, c cache.Cache) *RatingHandler {
	return &RatingHandler{store: store, cache: c}
}

// ListByStory handles GET /stories/:id/ratings.
func (h *RatingHandler) ListByStory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ratings, err := h.store.GetRatings(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, ratings)
}

// Average handles GET /stories/:id/ratings/average.
func (h *RatingHandler) Average(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	avg, err := h.store.GetAverageRating(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"story_id": id, "average_rating": avg})
}

// Create handles POST /stories/:id/ratings. One rating per user per
// story; a second attempt gets a 409.
func (h *RatingHandler) Create(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CreateRatingRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	story, err := h.store.GetStory(ctx, id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if story == nil {
		response.NotFound(c, "story not found")
		return
	}

	rating, err := h.store.CreateRating(ctx, model.NewRating{
		UserID:  middleware.UserID(c),
		StoryID: id,
		Rating:  req.Rating,
		Review:  req.Review,
	})
	if err != nil {
		handleStorageError(c, err)
		return
	}

	// A new rating changes the aggregate the top-rated list is built on.
	if err := h.cache.DeletePattern(ctx, topRatedCacheKey+"*"); err != nil {
		logger.Error("failed to invalidate top rated cache", err)
	}

	response.Success(c, http.StatusCreated, rating)
}

// Mine handles GET /stories/:id/ratings/me: the caller's own rating,
// if any.
func (h *RatingHandler) Mine(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.store.GetRating(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if rating == nil {
		response.NotFound(c, "rating not found")
		return
	}
	response.Success(c, http.StatusOK, rating)
}
