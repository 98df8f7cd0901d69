package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
)

type GenreHandler struct {
	store storage.Storage
}

func NewGenreHandler(store storage.Storage) *GenreHandler {
	return &GenreHandler{store: store}
}

// List handles GET /genres.
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.store.GetGenres(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// Get handles GET /genres/:id.
func (h *GenreHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	genre, err := h.store.GetGenre(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if genre == nil {
		response.NotFound(c, "genre not found")
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// Create handles POST /genres, admin only. Genres are reference data;
// there is no delete.
func (h *GenreHandler) Create(c *gin.Context) {
	var req CreateGenreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	genre, err := h.store.CreateGenre(c.Request.Context(), model.NewGenre{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusCreated, genre)
}

// StoryGenres handles GET /stories/:id/genres.
func (h *GenreHandler) StoryGenres(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	genres, err := h.store.GetStoryGenres(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// AddStoryGenre handles POST /stories/:id/genres, owner or admin only.
func (h *GenreHandler) AddStoryGenre(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AddStoryGenreRequest
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
	if story.AuthorID != middleware.UserID(c) && !c.GetBool(middleware.CtxIsAdmin) {
		response.Forbidden(c, "not your story")
		return
	}

	genre, err := h.store.GetGenre(ctx, req.GenreID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if genre == nil {
		response.NotFound(c, "genre not found")
		return
	}

	if err := h.store.AddStoryGenre(ctx, id, req.GenreID); err != nil {
		handleStorageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
