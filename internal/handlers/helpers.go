package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/response"
)

type validatable interface {
	Validate() error
}

// bindAndValidate unmarshals the body and runs the DTO's validation.
// Writes the error response itself; callers just return on failure.
func bindAndValidate(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}
	if err := req.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verrs)
		} else {
			response.BadRequest(c, err.Error())
		}
		return false
	}
	return true
}

// idParam parses a numeric route parameter. Writes a 400 on failure.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// handleStorageError maps storage sentinels onto HTTP statuses. Anything
// unexpected becomes a 500.
func handleStorageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUsernameTaken),
		errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrAlreadyRated),
		errors.Is(err, model.ErrAlreadyBookmarked),
		errors.Is(err, model.ErrDuplicateStoryGenre):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidReference):
		response.NotFound(c, err.Error())
	default:
		response.InternalServerError(c, "something went wrong")
	}
}
