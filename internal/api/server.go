package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolradio/internal/api/middleware"
	"schoolradio/internal/config"
	"schoolradio/internal/presence"
	"schoolradio/internal/radio"
)

type Server struct {
	cfg     *config.Config
	engine  *radio.Engine
	tracker *presence.Tracker
	router  *gin.Engine
}

func New(cfg *config.Config, engine *radio.Engine, tracker *presence.Tracker) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		tracker: tracker,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(slog.Default()))

	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "schoolradio"})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API Group
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/now", s.GetNowPlaying)
		v1.GET("/playlist", s.GetPlaylist)
		v1.GET("/stats", s.GetStats)
		v1.POST("/playlist/refresh", s.RefreshPlaylist)

		v1.POST("/sessions", s.ConnectSession)
		v1.POST("/sessions/:id/heartbeat", s.HeartbeatSession)
		v1.DELETE("/sessions/:id", s.DisconnectSession)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth([]byte(s.cfg.Auth.JWTSecret)), middleware.RequireRole("admin"))
		{
			admin.POST("/reset", s.HardReset)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
