package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hekayaty-backend/internal/shared/middleware"
	"hekayaty-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupStoryRoutes(v1, c)
		setupGenreRoutes(v1, c)
		setupBookmarkRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AuthHandler.Register)
		auth.POST("/login", c.AuthHandler.Login)
		auth.POST("/refresh", c.AuthHandler.Refresh)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.AuthHandler.GetProfile)
		users.PUT("/me", c.AuthHandler.UpdateProfile)
		users.GET("/me/stories", c.StoryHandler.MyStories)
	}
}

// ========================================
// STORY ROUTES
// ========================================
func setupStoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	stories := v1.Group("/stories")
	{
		stories.GET("", c.StoryHandler.List)
		stories.GET("/featured", c.StoryHandler.Featured)
		stories.GET("/top-rated", c.StoryHandler.TopRated)
		stories.GET("/:id", c.StoryHandler.Get)
		stories.GET("/:id/genres", c.GenreHandler.StoryGenres)
		stories.GET("/:id/ratings", c.RatingHandler.ListByStory)
		stories.GET("/:id/ratings/average", c.RatingHandler.Average)
	}

	authed := v1.Group("/stories")
	authed.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		authed.POST("", c.StoryHandler.Create)
		authed.PUT("/:id", c.StoryHandler.Update)
		authed.DELETE("/:id", c.StoryHandler.Delete)
		authed.POST("/:id/genres", c.GenreHandler.AddStoryGenre)
		authed.POST("/:id/ratings", c.RatingHandler.Create)
		authed.GET("/:id/ratings/me", c.RatingHandler.Mine)
	}
}

// ========================================
// GENRE ROUTES
// ========================================
func setupGenreRoutes(v1 *gin.RouterGroup, c *container.Container) {
	genres := v1.Group("/genres")
	{
		genres.GET("", c.GenreHandler.List)
		genres.GET("/:id", c.GenreHandler.Get)
		genres.POST("", middleware.AuthMiddleware(c.JWTManager), middleware.AdminOnly(), c.GenreHandler.Create)
	}
}

// ========================================
// BOOKMARK ROUTES
// ========================================
func setupBookmarkRoutes(v1 *gin.RouterGroup, c *container.Container) {
	bookmarks := v1.Group("/bookmarks")
	bookmarks.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		bookmarks.GET("", c.BookmarkHandler.List)
		bookmarks.POST("", c.BookmarkHandler.Create)
		bookmarks.DELETE("/:storyId", c.BookmarkHandler.Delete)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminOnly())
	{
		admin.GET("/stats", c.AdminHandler.Stats)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
			"backend": c.Config.Storage.Backend,
		}

		if c.DB != nil {
			if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
				health["status"] = "degraded"
				health["database"] = "unreachable"
				ctx.JSON(http.StatusServiceUnavailable, health)
				return
			}
			health["database"] = "ok"
		}

		ctx.JSON(http.StatusOK, health)
	}
}
