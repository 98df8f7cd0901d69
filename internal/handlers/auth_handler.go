package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/shared/response"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/jwt"
	"hekayaty-backend/pkg/logger"
)

type AuthHandler struct {
	store      storage.Storage
	jwtManager *jwt.Manager
	cache      cache.Cache
}

func NewAuthHandler(store storage.Storage, jwtManager *jwt.Manager, c cache.Cache) *AuthHandler {
	return &AuthHandler{store: store, jwtManager: jwtManager, cache: c}
}

type loginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalServerError(c, "failed to process password")
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), model.NewUser{
		Username: req.Username,
		Password: string(hash),
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		handleStorageError(c, err)
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}
	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}

	// The user count feeds the cached admin stats.
	if err := h.cache.Delete(c.Request.Context(), statsCacheKey); err != nil {
		logger.Error("failed to invalidate admin stats cache", err)
	}

	logger.Info("user registered", map[string]interface{}{"user_id": user.ID})
	response.Success(c, http.StatusCreated, loginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Login handles POST /auth/login. The identifier may be a username or an
// email; both match case-insensitively.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if user == nil {
		user, err = h.store.GetUserByEmail(ctx, req.Username)
		if err != nil {
			response.InternalServerError(c, "something went wrong")
			return
		}
	}
	if user == nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}
	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}

	response.Success(c, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(c, "missing refresh token")
		return
	}

	claims, err := h.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token")
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if user == nil {
		response.Unauthorized(c, "unknown user")
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		response.InternalServerError(c, "failed to issue token")
		return
	}

	response.Success(c, http.StatusOK, loginResponse{User: user, AccessToken: accessToken})
}

// GetProfile handles GET /users/me.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalServerError(c, "something went wrong")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/me. Only provided fields are merged.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.store.UpdateUser(c.Request.Context(), middleware.UserID(c), model.UserUpdate{
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Email:     req.Email,
	})
	if err != nil {
		handleStorageError(c, err)
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, http.StatusOK, user)
}
