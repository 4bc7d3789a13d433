package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/musifyyy/tunefetch/api/handlers"
	"github.com/musifyyy/tunefetch/api/middleware"
	"github.com/musifyyy/tunefetch/internal/app"
	"github.com/musifyyy/tunefetch/internal/domain"
)

// SetupRouter sets up the HTTP router over the resolution core.
func SetupRouter(
	resolver *app.Resolver,
	pipeline *app.Pipeline,
	journal domain.FetchJournal,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(resolver)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		searchHandler := handlers.NewSearchHandler(resolver, journal, log)
		v1.POST("/search", searchHandler.Search)

		fetchHandler := handlers.NewFetchHandler(pipeline, journal, log)
		v1.POST("/fetch", fetchHandler.Fetch)

		requests := v1.Group("/requests")
		{
			requests.GET("", fetchHandler.ListRequests)
			requests.GET("/:id", fetchHandler.GetRequest)
		}
	}

	return router
}
