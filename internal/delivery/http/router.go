package http

import (
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/delivery/http/handler"
	"github.com/gdugdh24/partnerfinder/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Router struct {
	profileHandler   *handler.ProfileHandler
	feedHandler      *handler.FeedHandler
	swipeHandler     *handler.SwipeHandler
	matchHandler     *handler.MatchHandler
	discoveryHandler *handler.DiscoveryHandler
	wsHandler        *handler.WebSocketHandler
	authMiddleware   *middleware.AuthMiddleware
	log              zerolog.Logger
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	feedHandler *handler.FeedHandler,
	swipeHandler *handler.SwipeHandler,
	matchHandler *handler.MatchHandler,
	discoveryHandler *handler.DiscoveryHandler,
	wsHandler *handler.WebSocketHandler,
	authMiddleware *middleware.AuthMiddleware,
	log zerolog.Logger,
) *Router {
	return &Router{
		profileHandler:   profileHandler,
		feedHandler:      feedHandler,
		swipeHandler:     swipeHandler,
		matchHandler:     matchHandler,
		discoveryHandler: discoveryHandler,
		wsHandler:        wsHandler,
		authMiddleware:   authMiddleware,
		log:              log,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.log))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/complete-onboarding", r.profileHandler.CompleteOnboarding)
				profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
			}

			protected.GET("/feed", r.feedHandler.GetFeed)
			protected.POST("/swipe", r.swipeHandler.CreateSwipe)
			protected.GET("/matches", r.matchHandler.GetMatches)

			// Card stack session
			discovery := protected.Group("/discovery")
			{
				discovery.GET("", r.discoveryHandler.GetSession)
				discovery.PUT("/filter", r.discoveryHandler.SetFilter)
				discovery.DELETE("/filter", r.discoveryHandler.ResetFilter)
				discovery.POST("/reload", r.discoveryHandler.Reload)
				discovery.POST("/swipe", r.discoveryHandler.Swipe)
				discovery.POST("/drag", r.discoveryHandler.Drag)
				discovery.POST("/release", r.discoveryHandler.Release)
			}

			protected.GET("/ws", r.wsHandler.Connect)
		}
	}

	return router
}
