package server

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imageresizer/internal/config"
	"imageresizer/internal/handler"
	"imageresizer/internal/repository"
	"imageresizer/internal/service"
	"imageresizer/web"
)

type Server struct {
	httpServer *http.Server
	sessions   repository.SessionRepository
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	sessions := repository.NewSessionRepository(&cfg.Session, log)
	imageService := service.NewImageService(cfg, log)
	h := handler.NewHandler(imageService, sessions, cfg, log)

	router, err := NewRouter(cfg, h, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		sessions: sessions,
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		log:      log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

// NewRouter wires middleware, templates and routes onto a gin engine.
func NewRouter(cfg *config.Config, h *handler.Handler, log *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.MaxMultipartMemory = cfg.App.MaxMultipartMemory

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", h.GetUI)
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/labels", h.GetLabels)
		api.GET("/settings", h.GetSettings)
		api.POST("/settings", h.SaveSettings)
		api.DELETE("/settings", h.ResetSettings)
		api.POST("/process", h.ProcessImages)
		api.POST("/archive", h.DownloadArchive)
	}

	return router, nil
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) Run() error {
	go s.sessions.RunCleanup(s.ctx)

	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}
