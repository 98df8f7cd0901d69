package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
)

type BookmarkHandler struct {
	store storage.Storage
}

func NewBookmarkHandler(store storage.Storage) *BookmarkHandler {
	return &BookmarkHandler{store: store}
}

// List handles GET /bookmarks: the stories the caller saved.
func (h *BookmarkHandler) List(c *gin.Context) {
	stories, err := h.store.GetBookmarks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, stories)
}

// Create handles POST /bookmarks.
func (h *BookmarkHandler) Create(c *gin.Context) {
	var req CreateBookmarkRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	story, err := h.store.GetStory(ctx, req.StoryID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if story == nil {
		response.NotFound(c, "story not found")
		return
	}

	bookmark, err := h.store.CreateBookmark(ctx, middleware.UserID(c), req.StoryID)
	if err != nil {
		handleStorageError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, bookmark)
}

// Delete handles DELETE /bookmarks/:storyId. Deleting a bookmark that
// does not exist is a 404, not an error.
func (h *BookmarkHandler) Delete(c *gin.Context) {
	storyID, ok := idParam(c, "storyId")
	if !ok {
		return
	}

	deleted, err := h.store.DeleteBookmark(c.Request.Context(), middleware.UserID(c), storyID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if !deleted {
		response.NotFound(c, "bookmark not found")
		return
	}
	c.Status(http.StatusNoContent)
}
