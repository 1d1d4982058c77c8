// Package httpapi exposes the wellness and record operations over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikecbrant/glowcycle/internal/records"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/tracker"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// Config configures the server.
type Config struct {
	AllowOrigins []string
	Debug        bool
	// Gatherer backs /metrics; nil uses the default gatherer.
	Gatherer prometheus.Gatherer
	// WellnessRate limits /wellness per user.
	WellnessRate RateLimit
}

// Server routes HTTP requests to the wellness service and tracker.
type Server struct {
	engine  *gin.Engine
	service *wellness.Service
	tracker *tracker.Tracker
	logger  logging.Logger
}

// New builds the gin engine and registers every route.
func New(svc *wellness.Service, tr *tracker.Tracker, cfg Config, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{engine: gin.New(), service: svc, tracker: tr, logger: logging.OrNop(logger)}
	s.engine.Use(gin.Recovery(), s.requestID(), s.accessLog())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	s.engine.Use(cors.New(corsConfig))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	s.engine.GET("/wellness", s.limitByUser(newUserLimiter(cfg.WellnessRate)), s.getWellness)
	s.engine.GET("/journal", s.listJournal)
	s.engine.POST("/journal", s.saveJournal)
	s.engine.GET("/period", s.listPeriods)
	s.engine.POST("/period", s.savePeriod)
	s.engine.DELETE("/period", s.deletePeriod)
	s.engine.GET("/skin", s.listSkin)
	s.engine.POST("/skin", s.saveSkin)
	s.engine.GET("/user", s.getUser)
	s.engine.POST("/user", s.createUser)
	s.engine.POST("/user/setup", s.completeSetup)
	s.engine.GET("/judge/setup", s.judgeSetupStatus)
	s.engine.POST("/judge/setup", s.saveJudgeSetup)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("http.listen", logging.Fields{"addr": addr})
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http.shutdown", logging.Fields{"addr": addr})
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logging.Fields{
			"requestId": c.GetString("requestID"),
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"ms":        time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("http.request", fields)
			return
		}
		s.logger.Debug("http.request", fields)
	}
}

// fail maps err onto a status code and error body.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		ve *records.ValidationError
		ue *wellness.UpstreamError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tracker.ErrUserExists):
		status = http.StatusConflict
	case errors.As(err, &ue):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.error", logging.Fields{"requestId": c.GetString("requestID"), "error": err.Error()})
	}
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "error": err.Error()})
}
