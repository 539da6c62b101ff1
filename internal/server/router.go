package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/conversation"
)

// RouterConfig holds what the router needs.
type RouterConfig struct {
	Driver       *conversation.Driver
	AllowOrigins []string
	Logger       *zap.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(CORS(cfg.AllowOrigins))

	h := &Handler{driver: cfg.Driver, logger: log}

	router.GET("/healthcheck", HealthCheck)

	router.POST("/chat", h.Chat)
	router.POST("/reset", h.Reset)

	router.GET("/profile/:id", h.Profile)
	router.GET("/profile/:id/download", h.Download)
	router.GET("/sessions", h.Sessions)
	router.GET("/analytics", h.Analytics)

	router.GET("/colleges", h.Colleges)
	router.POST("/recommendations", h.Recommendations)

	return router
}
