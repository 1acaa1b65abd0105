package main

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/handlers"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/pkg/logger"
	"github.com/softdesk/softdesk-api/pkg/response"
)

// newRouter builds the engine with every route registered.
func newRouter(svc *appServices) *gin.Engine {
	r := gin.New()
	registerRoutes(r, svc)
	return r
}

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "not found") })

	r.Use(
		logger.GinLogger(),
		logger.GinRecovery(),
		svc.httpMetrics.Middleware(),
		middleware.CORS(svc.cfg.Server.AllowOrigins),
	)

	healthHandler := handlers.NewHealthHandler(svc.db)
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics(svc.registry))

	api := r.Group("/api")
	api.Use(middleware.Authenticate(svc.db), middleware.AuditLog())
	{
		// Tokens (rate limited when enabled)
		authHandler := handlers.NewAuthHandler(svc.db, svc.cfg)
		token := api.Group("/token")
		if svc.tokenLimiter != nil {
			token.Use(svc.tokenLimiter.Middleware())
		}
		token.POST("", authHandler.Obtain)
		token.POST("/refresh", authHandler.Refresh)
		token.POST("/revoke", authHandler.Revoke)

		// Choices
		api.GET("/choices/projects", handlers.ProjectChoices)
		api.GET("/choices/issues", handlers.IssueChoices)

		// Users
		userHandler := handlers.NewUserHandler(svc.db, svc.gate)
		api.POST("/users", userHandler.Register)
		api.GET("/users", userHandler.List)
		account := api.Group("/users", middleware.AuthRequired(svc.db))
		account.GET("/me", userHandler.Me)
		account.GET("/:id", userHandler.GetByID)
		account.PUT("/:id", userHandler.Update)
		account.PATCH("/:id", userHandler.PartialUpdate)
		account.DELETE("/:id", userHandler.Delete)

		// Projects and everything nested under them need an identity before
		// any row is looked up.
		projects := api.Group("/projects", middleware.AuthRequired(svc.db))
		projectHandler := handlers.NewProjectHandler(svc.db, svc.gate)
		projects.GET("", projectHandler.List)
		projects.POST("", projectHandler.Create)
		projects.GET("/:project_id", projectHandler.GetByID)
		projects.PUT("/:project_id", projectHandler.Update)
		projects.PATCH("/:project_id", projectHandler.PartialUpdate)
		projects.DELETE("/:project_id", projectHandler.Delete)

		// Contributors
		contributorHandler := handlers.NewContributorHandler(svc.db, svc.gate)
		contributors := projects.Group("/:project_id/contributors")
		contributors.GET("", contributorHandler.List)
		contributors.POST("", contributorHandler.Create)
		contributors.GET("/:contributor_id", contributorHandler.GetByID)
		contributors.PUT("/:contributor_id", contributorHandler.Update)
		contributors.PATCH("/:contributor_id", contributorHandler.PartialUpdate)
		contributors.DELETE("/:contributor_id", contributorHandler.Delete)

		// Issues
		issueHandler := handlers.NewIssueHandler(svc.db, svc.gate)
		issues := projects.Group("/:project_id/issues")
		issues.GET("", issueHandler.List)
		issues.POST("", issueHandler.Create)
		issues.GET("/:issue_id", issueHandler.GetByID)
		issues.PUT("/:issue_id", issueHandler.Update)
		issues.PATCH("/:issue_id", issueHandler.PartialUpdate)
		issues.DELETE("/:issue_id", issueHandler.Delete)

		// Comments
		commentHandler := handlers.NewCommentHandler(svc.db, svc.gate)
		comments := issues.Group("/:issue_id/comments")
		comments.GET("", commentHandler.List)
		comments.POST("", commentHandler.Create)
		comments.GET("/:comment_uuid", commentHandler.GetByUUID)
		comments.PUT("/:comment_uuid", commentHandler.Update)
		comments.PATCH("/:comment_uuid", commentHandler.PartialUpdate)
		comments.DELETE("/:comment_uuid", commentHandler.Delete)
	}
}
