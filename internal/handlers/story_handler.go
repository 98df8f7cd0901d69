package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/logger"
)

const (
	topRatedCacheKey = "stories:top-rated:"
	topRatedCacheTTL = 2 * time.Minute
)

type StoryHandler struct {
	store storage.Storage
	cache cache.Cache
}

func NewStoryHandler(store storage.Storage, c cache.Cache) *StoryHandler {
	return &StoryHandler{store: store, cache: c}
}

// List handles GET /stories. Query params map straight onto the storage
// filter; only published stories ever come back from this path.
func (h *StoryHandler) List(c *gin.Context) {
	filter := storage.StoryFilter{}

	if v := c.Query("author_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "invalid author_id")
			return
		}
		filter.AuthorID = &id
	}
	if v := c.Query("genre_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "invalid genre_id")
			return
		}
		filter.GenreID = &id
	}
	if v := c.Query("is_premium"); v != "" {
		premium, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "invalid is_premium")
			return
		}
		filter.IsPremium = &premium
	}
	if v := c.Query("is_short_story"); v != "" {
		short, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "invalid is_short_story")
			return
		}
		filter.IsShortStory = &short
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			response.BadRequest(c, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	stories, err := h.store.GetStories(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = storage.DefaultStoryLimit
	}
	response.SuccessWithMeta(c, http.StatusOK, stories, &response.Meta{
		Limit:  limit,
		Offset: filter.Offset,
	})
}

// Featured handles GET /stories/featured: a random sample, so never
// cached.
func (h *StoryHandler) Featured(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	stories, err := h.store.GetFeaturedStories(c.Request.Context(), limit)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, stories)
}

// TopRated handles GET /stories/top-rated, cached briefly since the
// aggregate is the most expensive read in the catalog.
func (h *StoryHandler) TopRated(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	key := topRatedCacheKey + strconv.Itoa(limit)

	var cached []*model.StoryWithRating
	if found, err := h.cache.Get(ctx, key, &cached); err == nil && found {
		response.Success(c, http.StatusOK, cached)
		return
	}

	stories, err := h.store.GetTopRatedStories(ctx, limit)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if err := h.cache.Set(ctx, key, stories, topRatedCacheTTL); err != nil {
		logger.Error("failed to cache top rated stories", err)
	}
	response.Success(c, http.StatusOK, stories)
}

// Get handles GET /stories/:id.
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	story, err := h.store.GetStory(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if story == nil {
		response.NotFound(c, "story not found")
		return
	}
	response.Success(c, http.StatusOK, story)
}

// MyStories handles GET /users/me/stories: the author dashboard, drafts
// included.
func (h *StoryHandler) MyStories(c *gin.Context) {
	stories, err := h.store.GetAuthorStories(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, stories)
}

// Create handles POST /stories. Free-tier authors are limited to one
// novel and one short story; premium accounts are uncapped.
func (h *StoryHandler) Create(c *gin.Context) {
	var req CreateStoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if user == nil {
		response.Unauthorized(c, "unknown user")
		return
	}

	if !user.IsPremium {
		// Counts drafts too: the cap applies before publishing.
		count, err := h.store.CountAuthorStories(ctx, userID, req.IsShortStory)
		if err != nil {
			response.InternalServerError(c, "something went wrong")
			return
		}
		if count >= 1 {
			kind := "novel"
			if req.IsShortStory {
				kind = "short story"
			}
			response.Forbidden(c, "free tier allows only one "+kind+"; upgrade to premium to publish more")
			return
		}
	}

	story, err := h.store.CreateStory(ctx, model.NewStory{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		CoverImage:   req.CoverImage,
		AuthorID:     userID,
		IsPremium:    req.IsPremium,
		IsPublished:  req.IsPublished,
		IsShortStory: req.IsShortStory,
	})
	if err != nil {
		handleStorageError(c, err)
		return
	}

	for _, genreID := range req.GenreIDs {
		if err := h.store.AddStoryGenre(ctx, story.ID, genreID); err != nil {
			handleStorageError(c, err)
			return
		}
	}

	// Mark the account as an author on first story.
	if !user.IsAuthor {
		isAuthor := true
		if _, err := h.store.UpdateUser(ctx, userID, model.UserUpdate{IsAuthor: &isAuthor}); err != nil {
			logger.Error("failed to flag user as author", err)
		}
	}

	h.invalidateListCaches(c)
	response.Success(c, http.StatusCreated, story)
}

// Update handles PUT /stories/:id, owner or admin only.
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.GetStory(ctx, id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if existing == nil {
		response.NotFound(c, "story not found")
		return
	}
	if existing.AuthorID != middleware.UserID(c) && !c.GetBool(middleware.CtxIsAdmin) {
		response.Forbidden(c, "not your story")
		return
	}

	story, err := h.store.UpdateStory(ctx, id, model.StoryUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		CoverImage:   req.CoverImage,
		IsPremium:    req.IsPremium,
		IsPublished:  req.IsPublished,
		IsShortStory: req.IsShortStory,
	})
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if story == nil {
		response.NotFound(c, "story not found")
		return
	}

	h.invalidateListCaches(c)
	response.Success(c, http.StatusOK, story)
}

// Delete handles DELETE /stories/:id, owner or admin only. Cascades to
// genre links, ratings and bookmarks inside the storage layer.
func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.GetStory(ctx, id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if existing == nil {
		response.NotFound(c, "story not found")
		return
	}
	if existing.AuthorID != middleware.UserID(c) && !c.GetBool(middleware.CtxIsAdmin) {
		response.Forbidden(c, "not your story")
		return
	}

	deleted, err := h.store.DeleteStory(ctx, id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if !deleted {
		response.NotFound(c, "story not found")
		return
	}

	h.invalidateListCaches(c)
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) invalidateListCaches(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.cache.DeletePattern(ctx, topRatedCacheKey+"*"); err != nil {
		logger.Error("failed to invalidate story caches", err)
	}
	// Story writes move the admin counts too.
	if err := h.cache.Delete(ctx, statsCacheKey); err != nil {
		logger.Error("failed to invalidate admin stats cache", err)
	}
}
