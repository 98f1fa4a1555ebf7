package main

import (
	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/handlers"
	"github.com/promptdir/backend/internal/middleware"
	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiters: one for webhook delivery, a tighter one for AI runs
	webhookLimiter := middleware.NewRateLimiter(10, 20)
	executeLimiter := middleware.NewRateLimiter(1, 5)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	db := models.GetDB()

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authHandler := handlers.NewAuthHandler(db, &cfg.JWT)
		api.POST("/auth/login", authHandler.Login)

		// Boot aggregate (public)
		bootHandler := handlers.NewBootHandler(db)
		api.GET("/boot", bootHandler.Load)

		// Public directory routes. AuthOptional records the caller when a
		// token is present so reads can be attributed.
		promptHandler := handlers.NewPromptHandler(db)
		public := api.Group("", middleware.AuthOptional())
		{
			public.GET("/prompts", promptHandler.List)
			public.GET("/prompts/:id", promptHandler.GetByID)
			public.POST("/prompts/:id/usage", promptHandler.IncrementUsage)
		}

		// Prompt execution (public, rate limited)
		executeHandler := handlers.NewExecuteHandler(db, &cfg.AI)
		api.POST("/prompts/:id/execute", middleware.AuthOptional(), executeLimiter.Middleware(), executeHandler.Execute)

		// Blog (public)
		blogHandler := handlers.NewBlogHandler(db)
		api.GET("/blogs", blogHandler.List)
		api.GET("/blogs/:slug", blogHandler.GetBySlug)

		// Categories (public)
		categoryHandler := handlers.NewCategoryHandler(db)
		api.GET("/categories", categoryHandler.List)
		api.GET("/categories/:categoryId", categoryHandler.Get)

		// Identity webhook (public with signature verification, rate limited)
		api.POST("/webhook/identity", webhookLimiter.Middleware(), svc.webhookHandler.HandleIdentity)

		// Signed-in routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			userHandler := handlers.NewUserHandler(db)
			protected.GET("/users/me", userHandler.Me)
			protected.PUT("/users/me/subscription", userHandler.Subscribe)

			protected.POST("/prompts", promptHandler.Create)
			protected.GET("/prompts/mine", promptHandler.ListMine)

			favoriteHandler := handlers.NewFavoriteHandler(db)
			protected.GET("/favorites", favoriteHandler.List)
			protected.POST("/favorites/:id", favoriteHandler.Add)
			protected.DELETE("/favorites/:id", favoriteHandler.Remove)
			protected.GET("/favorites/:id", favoriteHandler.Check)
		}

		// Admin only routes, audited
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.GET("/prompts", promptHandler.AdminList)
			admin.PUT("/prompts/:id", promptHandler.Update)
			admin.PUT("/prompts/:id/status", promptHandler.UpdateStatus)
			admin.DELETE("/prompts/:id", promptHandler.Delete)

			admin.GET("/blogs", blogHandler.AdminList)
			admin.GET("/blogs/:id", blogHandler.AdminGet)
			admin.POST("/blogs", blogHandler.Create)
			admin.PUT("/blogs/:id", blogHandler.Update)
			admin.DELETE("/blogs/:id", blogHandler.Delete)

			admin.POST("/categories", categoryHandler.Create)
			admin.PUT("/categories/:categoryId", categoryHandler.Update)
			admin.DELETE("/categories/:categoryId", categoryHandler.Delete)
			admin.POST("/categories/recount", categoryHandler.Recount)

			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.AdminList)
			admin.GET("/users/:subjectId", userHandler.AdminGet)
			admin.PUT("/users/:subjectId/role", userHandler.SetRole)

			llmConfigHandler := handlers.NewLLMConfigHandler(db)
			admin.GET("/llm-configs", llmConfigHandler.List)
			admin.GET("/llm-configs/:id", llmConfigHandler.Get)
			admin.POST("/llm-configs", llmConfigHandler.Create)
			admin.PUT("/llm-configs/:id", llmConfigHandler.Update)
			admin.DELETE("/llm-configs/:id", llmConfigHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler()
			admin.GET("/system-logs", systemLogHandler.List)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
