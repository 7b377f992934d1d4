package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Portfolio *PortfolioHandler
	WebSocket *WebSocketHandler
	// Auth is nil when authentication is disabled; portfolio routes are then open.
	Auth *AuthHandler
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h Handlers, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), CORS())
	RegisterRoutes(router, h)
	return router
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Portfolio Tracker API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /health",
				"GET /api/portfolio",
				"POST /api/portfolio",
				"POST /api/entries",
				"PUT /api/portfolio/settings",
				"GET /ws",
				"POST /api/auth/register",
				"POST /api/auth/login",
				"GET /api/auth/me",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Portfolio Tracker API is running",
		})
	})

	var protected []gin.HandlerFunc
	if h.Auth != nil {
		authMiddleware := h.Auth.AuthMiddleware()
		protected = append(protected, authMiddleware)

		router.POST("/api/auth/register", h.Auth.Register)
		router.POST("/api/auth/login", h.Auth.Login)
		router.GET("/api/auth/me", authMiddleware, h.Auth.GetCurrentUser)
	}

	api := router.Group("/api", protected...)
	{
		api.GET("/portfolio", h.Portfolio.GetPortfolio)
		api.POST("/portfolio", h.Portfolio.Write)
		api.PUT("/portfolio/settings", h.Portfolio.ReplaceSettings)
		api.POST("/entries", h.Portfolio.AddEntry)
	}

	if h.WebSocket != nil {
		router.GET("/ws", append(protected, h.WebSocket.Subscribe)...)
	}
}
