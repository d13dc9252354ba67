package router

import (
	"github.com/gin-gonic/gin"
	"github.com/roleplayhq/roleplay-backend/config"
	"github.com/roleplayhq/roleplay-backend/internal/app/controller"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	groupController   *controller.GroupController
	requestController *controller.GroupRequestController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	groupController *controller.GroupController,
	requestController *controller.GroupRequestController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		groupController:   groupController,
		requestController: requestController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ROLEPLAY API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimitByIP(middleware.StrictLimit), r.authController.Register)
			auth.POST("/login", middleware.RateLimitByIP(middleware.StrictLimit), r.authController.Login)
			auth.POST("/forgot-password", middleware.RateLimitByIP(middleware.StrictLimit), r.authController.ForgotPassword)
			auth.POST("/reset-password", middleware.RateLimitByIP(middleware.StrictLimit), r.authController.ResetPassword)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("", r.groupController.ListGroups)
			groups.GET("/:groupId", r.groupController.GetGroup)

			groups.POST("", r.authMiddleware.Authenticate(), r.groupController.CreateGroup)
			groups.PATCH("/:groupId", r.authMiddleware.Authenticate(), r.groupController.UpdateGroup)
			groups.DELETE("/:groupId", r.authMiddleware.Authenticate(), r.groupController.DeleteGroup)
			groups.DELETE("/:groupId/players/:playerId", r.authMiddleware.Authenticate(), r.groupController.RemovePlayer)

			groups.POST("/:groupId/requests", r.authMiddleware.Authenticate(), r.requestController.CreateRequest)
			groups.POST("/:groupId/requests/:requestId/accept", r.authMiddleware.Authenticate(), r.requestController.AcceptRequest)
			groups.DELETE("/:groupId/requests/:requestId", r.authMiddleware.Authenticate(), r.requestController.RejectRequest)
		}

		requests := v1.Group("/requests")
		requests.Use(r.authMiddleware.Authenticate())
		{
			requests.GET("", r.requestController.ListRequests)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/avatar-url", r.uploadController.GenerateAvatarUploadURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
