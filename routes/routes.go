package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/middleware"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "Cookie"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(60, time.Minute))

	// Public user routes
	user := api.Group("/user")
	user.POST("/register", handlers.Register)
	user.POST("/login", handlers.Login)
	user.POST("/logout", handlers.Logout)

	userAuth := user.Group("")
	userAuth.Use(middleware.JWTAuthMiddleware())
	userAuth.GET("/me", handlers.GetMyProfile)
	userAuth.POST("/avatar", handlers.UpdateAvatar)

	// Blog routes, all behind auth like the rest of the platform
	blogs := api.Group("/blog")
	blogs.Use(middleware.JWTAuthMiddleware())
	blogs.POST("/create", handlers.CreateBlog)
	blogs.PUT("/tags/:id", handlers.AddTags)
	blogs.GET("/auto-draft", handlers.FetchAutoDraft)
	blogs.POST("/save-draft", handlers.SaveDraft)
	blogs.POST("/auto-save-draft", handlers.AutoSaveDraft)
	blogs.PUT("/edit/:id", handlers.EditBlog)
	blogs.DELETE("/delete/:id", handlers.DeleteBlog)
	blogs.GET("/mine", handlers.GetMyBlogs)
	blogs.GET("", handlers.ListBlogs)
	blogs.GET("/:id", handlers.GetBlog)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"success": false,
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
