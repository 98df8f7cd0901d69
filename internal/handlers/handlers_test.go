package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hekayaty-backend/internal/model"
	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/internal/storage"
	"hekayaty-backend/internal/storage/memory"
	"hekayaty-backend/pkg/cache"
	"hekayaty-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  storage.Storage
}

// newTestEnv wires the handlers over the in-memory backend with the
// same route layout as the production router.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, cache.Noop{})
}

func newTestEnvWithCache(t *testing.T, c cache.Cache) *testEnv {
	t.Helper()

	store, err := memory.New()
	require.NoError(t, err)

	jwtManager := jwt.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	authHandler := NewAuthHandler(store, jwtManager, c)
	storyHandler := NewStoryHandler(store, c)
	genreHandler := NewGenreHandler(store)
	ratingHandler := NewRatingHandler(store, c)
	bookmarkHandler := NewBookmarkHandler(store)
	adminHandler := NewAdminHandler(store, c)

	router := gin.New()
	authRequired := middleware.AuthMiddleware(jwtManager)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	users := v1.Group("/users", authRequired)
	users.GET("/me", authHandler.GetProfile)
	users.PUT("/me", authHandler.UpdateProfile)
	users.GET("/me/stories", storyHandler.MyStories)

	stories := v1.Group("/stories")
	stories.GET("", storyHandler.List)
	stories.GET("/featured", storyHandler.Featured)
	stories.GET("/top-rated", storyHandler.TopRated)
	stories.GET("/:id", storyHandler.Get)
	stories.GET("/:id/genres", genreHandler.StoryGenres)
	stories.GET("/:id/ratings", ratingHandler.ListByStory)
	stories.GET("/:id/ratings/average", ratingHandler.Average)

	authed := v1.Group("/stories", authRequired)
	authed.POST("", storyHandler.Create)
	authed.PUT("/:id", storyHandler.Update)
	authed.DELETE("/:id", storyHandler.Delete)
	authed.POST("/:id/genres", genreHandler.AddStoryGenre)
	authed.POST("/:id/ratings", ratingHandler.Create)
	authed.GET("/:id/ratings/me", ratingHandler.Mine)

	genres := v1.Group("/genres")
	genres.GET("", genreHandler.List)
	genres.GET("/:id", genreHandler.Get)
	genres.POST("", authRequired, middleware.AdminOnly(), genreHandler.Create)

	bookmarks := v1.Group("/bookmarks", authRequired)
	bookmarks.GET("", bookmarkHandler.List)
	bookmarks.POST("", bookmarkHandler.Create)
	bookmarks.DELETE("/:storyId", bookmarkHandler.Delete)

	admin := v1.Group("/admin", authRequired, middleware.AdminOnly())
	admin.GET("/stats", adminHandler.Stats)

	return &testEnv{router: router, store: store}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env),
			"body: %s", w.Body.String())
	}
	return w, env
}

type authResult struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

func (e *testEnv) register(t *testing.T, username, password string) authResult {
	t.Helper()

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var res authResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.AccessToken)
	return res
}

func (e *testEnv) loginAdmin(t *testing.T) string {
	t.Helper()

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": storage.SeedAdminUsername,
		"password": storage.SeedAdminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var res authResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.AccessToken
}

// ========================================
// AUTH
// ========================================

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)

	reg := e.register(t, "storyteller", "hunter2hunter2")
	assert.Equal(t, "storyteller", reg.User.Username)
	assert.NotEmpty(t, reg.RefreshToken)

	// Login by username, case-insensitively.
	w, _ := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "STORYTELLER",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Login by email.
	w, _ = e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "storyteller@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Wrong password.
	w, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "storyteller",
		"password": "nope-nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "firstuser", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "FirstUser",
		"email":    "other@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestRefreshToken(t *testing.T) {
	e := newTestEnv(t)
	reg := e.register(t, "refresher", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": reg.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res authResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.AccessToken)

	// An access token is not a refresh token.
	w, _ = e.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": reg.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfile(t *testing.T) {
	e := newTestEnv(t)
	reg := e.register(t, "profiled", "hunter2hunter2")

	w, _ := e.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := e.do(t, http.MethodGet, "/api/v1/users/me", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "profiled", user.Username)

	// The password hash never leaves the API.
	assert.NotContains(t, w.Body.String(), "password")

	w, env = e.do(t, http.MethodPut, "/api/v1/users/me", reg.AccessToken, gin.H{
		"bio": "I write stories",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &user))
	require.NotNil(t, user.Bio)
	assert.Equal(t, "I write stories", *user.Bio)
}

// ========================================
// STORIES
// ========================================

func TestStoryLifecycle(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "author1", "hunter2hunter2")

	// Draft created.
	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":   "My Draft",
		"content": "chapter one",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))
	assert.False(t, story.IsPublished)

	// Drafts are invisible in the public catalog.
	w, env = e.do(t, http.MethodGet, "/api/v1/stories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []model.Story
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Empty(t, listed)

	// But the author dashboard sees them.
	w, env = e.do(t, http.MethodGet, "/api/v1/users/me/stories", author.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)

	// Publishing flips visibility.
	w, _ = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/stories/%d", story.ID), author.AccessToken, gin.H{
		"is_published": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = e.do(t, http.MethodGet, "/api/v1/stories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, story.ID, listed[0].ID)

	// First story flags the account as an author.
	w, env = e.do(t, http.MethodGet, "/api/v1/users/me", author.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user model.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.True(t, user.IsAuthor)
}

func TestStoryOwnership(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "owner", "hunter2hunter2")
	intruder := e.register(t, "intruder", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":        "Protected",
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))

	path := fmt.Sprintf("/api/v1/stories/%d", story.ID)

	w, _ = e.do(t, http.MethodPut, path, intruder.AccessToken, gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = e.do(t, http.MethodDelete, path, intruder.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins may moderate any story.
	adminToken := e.loginAdmin(t)
	w, _ = e.do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = e.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFreeTierStoryCap(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "freewriter", "hunter2hunter2")

	w, _ := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title": "First Novel",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Second novel is rejected even as a draft.
	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title": "Second Novel",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)

	// A short story is a separate quota.
	w, _ = e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":          "First Short",
		"is_short_story": true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":          "Second Short",
		"is_short_story": true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPremiumAuthorUncapped(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "premwriter", "hunter2hunter2")

	premium := true
	_, err := e.store.UpdateUser(t.Context(), author.User.ID, model.UserUpdate{IsPremium: &premium})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		w, _ := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
			"title": fmt.Sprintf("Novel %d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestStoryListFilters(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "filtered", "hunter2hunter2")

	w, _ := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":          "Short One",
		"is_published":   true,
		"is_short_story": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := e.do(t, http.MethodGet, "/api/v1/stories?is_short_story=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []model.Story
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Short One", listed[0].Title)

	w, _ = e.do(t, http.MethodGet, "/api/v1/stories?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ========================================
// GENRES
// ========================================

func TestGenres(t *testing.T) {
	e := newTestEnv(t)

	w, env := e.do(t, http.MethodGet, "/api/v1/genres", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var genres []model.Genre
	require.NoError(t, json.Unmarshal(env.Data, &genres))
	assert.Len(t, genres, 6)

	// Creating a genre is admin-only.
	user := e.register(t, "plainuser", "hunter2hunter2")
	w, _ = e.do(t, http.MethodPost, "/api/v1/genres", user.AccessToken, gin.H{
		"name": "Poetry",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := e.loginAdmin(t)
	w, env = e.do(t, http.MethodPost, "/api/v1/genres", adminToken, gin.H{
		"name": "Poetry",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var genre model.Genre
	require.NoError(t, json.Unmarshal(env.Data, &genre))
	assert.Equal(t, "Poetry", genre.Name)
}

func TestStoryGenreTagging(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "tagger", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":        "Tagged Tale",
		"is_published": true,
		"genre_ids":    []int{1, 2},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))

	w, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/stories/%d/genres", story.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var genres []model.Genre
	require.NoError(t, json.Unmarshal(env.Data, &genres))
	assert.Len(t, genres, 2)

	// Tagging the same genre twice conflicts.
	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/stories/%d/genres", story.ID), author.AccessToken, gin.H{
		"genre_id": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = e.do(t, http.MethodGet, "/api/v1/stories?genre_id=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []model.Story
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, story.ID, listed[0].ID)
}

// ========================================
// RATINGS
// ========================================

func TestRatings(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "rated", "hunter2hunter2")
	reader := e.register(t, "critic", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":        "Rate Me",
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))

	base := fmt.Sprintf("/api/v1/stories/%d/ratings", story.ID)

	// Unrated stories average zero.
	w, env = e.do(t, http.MethodGet, base+"/average", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avg struct {
		AverageRating float64 `json:"average_rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avg))
	assert.Zero(t, avg.AverageRating)

	w, _ = e.do(t, http.MethodPost, base, reader.AccessToken, gin.H{
		"rating": 5,
		"review": "a masterpiece",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// One rating per user per story.
	w, _ = e.do(t, http.MethodPost, base, reader.AccessToken, gin.H{"rating": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = e.do(t, http.MethodPost, base, reader.AccessToken, gin.H{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = e.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ratings []model.RatingWithUser
	require.NoError(t, json.Unmarshal(env.Data, &ratings))
	require.Len(t, ratings, 1)
	assert.Equal(t, "critic", ratings[0].User.Username)
	assert.Equal(t, 5, ratings[0].Rating.Rating)

	w, env = e.do(t, http.MethodGet, base+"/me", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine model.Rating
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Equal(t, 5, mine.Rating)

	w, _ = e.do(t, http.MethodGet, base+"/me", author.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ========================================
// BOOKMARKS
// ========================================

func TestBookmarks(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "saved", "hunter2hunter2")
	reader := e.register(t, "collector", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":        "Keep Me",
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))

	w, _ = e.do(t, http.MethodPost, "/api/v1/bookmarks", reader.AccessToken, gin.H{
		"story_id": story.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/bookmarks", reader.AccessToken, gin.H{
		"story_id": story.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/bookmarks", reader.AccessToken, gin.H{
		"story_id": 99999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = e.do(t, http.MethodGet, "/api/v1/bookmarks", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []model.Story
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, story.ID, listed[0].ID)

	path := fmt.Sprintf("/api/v1/bookmarks/%d", story.ID)
	w, _ = e.do(t, http.MethodDelete, path, reader.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = e.do(t, http.MethodDelete, path, reader.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ========================================
// ADMIN
// ========================================

func TestAdminStats(t *testing.T) {
	e := newTestEnv(t)
	user := e.register(t, "mortal", "hunter2hunter2")

	w, _ := e.do(t, http.MethodGet, "/api/v1/admin/stats", user.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := e.loginAdmin(t)
	w, env := e.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Users       int `json:"users"`
		Subscribers int `json:"subscribers"`
		Stories     int `json:"stories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Users) // admin plus the registered user
	assert.Zero(t, stats.Stories)
}

// ========================================
// CACHE INVALIDATION
// ========================================

// mapCache is a real (storing) cache.Cache so tests can observe staleness.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *mapCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mapCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *mapCache) Ping(ctx context.Context) error { return nil }

func TestTopRatedCacheInvalidatedOnRating(t *testing.T) {
	e := newTestEnvWithCache(t, newMapCache())
	author := e.register(t, "cachedauthor", "hunter2hunter2")
	reader := e.register(t, "cachedreader", "hunter2hunter2")

	w, env := e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title":        "Warm Me",
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var story model.Story
	require.NoError(t, json.Unmarshal(env.Data, &story))

	// Warm the cache with the unrated state.
	w, env = e.do(t, http.MethodGet, "/api/v1/stories/top-rated", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var top []model.StoryWithRating
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top, 1)
	assert.Zero(t, top[0].AverageRating)

	w, _ = e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/stories/%d/ratings", story.ID),
		reader.AccessToken, gin.H{"rating": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	// The next read must reflect the new rating, not the warmed entry.
	w, env = e.do(t, http.MethodGet, "/api/v1/stories/top-rated", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top, 1)
	assert.InDelta(t, 5.0, top[0].AverageRating, 0.001)
}

func TestAdminStatsCacheInvalidatedOnWrites(t *testing.T) {
	e := newTestEnvWithCache(t, newMapCache())
	adminToken := e.loginAdmin(t)

	var stats struct {
		Users   int `json:"users"`
		Stories int `json:"stories"`
	}

	// Warm the cache: only the seeded admin exists.
	w, env := e.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Users)
	assert.Zero(t, stats.Stories)

	author := e.register(t, "statwriter", "hunter2hunter2")

	w, env = e.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Users, "registration must drop the cached stats")

	w, _ = e.do(t, http.MethodPost, "/api/v1/stories", author.AccessToken, gin.H{
		"title": "Counted",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = e.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Stories, "story creation must drop the cached stats")
}
