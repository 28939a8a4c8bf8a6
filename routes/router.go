package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/config"
	"github.com/hexleaf/inkwell/controllers"
	"github.com/hexleaf/inkwell/middleware"
	"github.com/hexleaf/inkwell/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file, separate from the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record content traffic after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	blogController := controllers.NewBlogController(db)
	commentController := controllers.NewCommentController(db)
	userController := controllers.NewUserController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public reads resolve the viewer when a token is present so responses
	// can carry is_liked / is_bookmarked.
	public := api.Group("")
	public.Use(middleware.OptionalAuth())
	public.GET("/blogs", blogController.List)
	public.GET("/blogs/:id", blogController.Get)
	public.GET("/blogs/:id/comments", commentController.List)
	public.GET("/categories", blogController.ListCategories)
	public.GET("/users/:id", userController.Get)
	public.GET("/users/:id/blogs", blogController.ListByUser)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/blogs", blogController.Create)
	protected.PUT("/blogs/:id", blogController.Update)
	protected.DELETE("/blogs/:id", blogController.Delete)
	protected.POST("/blogs/:id/like", blogController.ToggleLike)
	protected.POST("/blogs/:id/bookmark", blogController.ToggleBookmark)
	protected.POST("/blogs/:id/comments", commentController.Create)
	protected.DELETE("/comments/:id", commentController.Delete)
	protected.POST("/comments/:id/like", commentController.ToggleLike)
	protected.GET("/users/me/blogs", blogController.ListMine)
	protected.GET("/users/me/bookmarks", blogController.ListBookmarks)
	protected.GET("/users/me/stats", userController.Stats)
	protected.POST("/upload", blogController.Upload)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
