package handlers

import (
	"github.com/SscSPs/team_finance_engine/cmd/docs"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/SscSPs/team_finance_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	feedLimiter *limiter.Limiter,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Bank feed ingestion authenticates with a shared token instead of a user JWT
	setupFeedRoutes(r, cfg, services, feedLimiter)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

func setupFeedRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, feedLimiter *limiter.Limiter) {
	handlers := []gin.HandlerFunc{middleware.FeedTokenAuth(cfg.FeedTokenHash)}
	if feedLimiter != nil {
		handlers = append(handlers, middleware.RateLimit(feedLimiter))
	}
	feed := r.Group("/api/v1/feed", handlers...)
	registerFeedRoutes(feed, services.Transaction)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Delegate route registration to specific handlers, passing required services
	registerTransactionRoutes(v1, service.Transaction, service.Exception)
	registerBudgetRoutes(v1, service.Budget, service.Association)
	registerEnvelopeRoutes(v1, service.Envelope)
	registerTeamSeasonRoutes(v1, service.TeamSeason)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
