package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/metrics"
	"github.com/deusflow/newsinsight/internal/pipeline"
	"github.com/deusflow/newsinsight/internal/ratelimit"
	"github.com/deusflow/newsinsight/internal/storage"
)

type Options struct {
	// DefaultQueries are fetched by get-news when the request names none.
	DefaultQueries []string
	AllowedOrigins []string
}

// Server exposes the pipeline stages over HTTP. Analysis endpoints work on
// the stored articles.
type Server struct {
	pipeline *pipeline.Pipeline
	store    storage.Store
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	opts     Options
	log      *slog.Logger
}

// NewServer creates a server. store, m and limiter may be nil.
func NewServer(p *pipeline.Pipeline, store storage.Store, m *metrics.Metrics, limiter *ratelimit.Limiter, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: p,
		store:    store,
		metrics:  m,
		limiter:  limiter,
		opts:     opts,
		log:      logger.With("component", "api"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.AllowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/get-news", s.getNews)
	v1.GET("/get-popular-and-categories-news", s.getPopularAndCategories)
	v1.GET("/analyze-news", s.analyzeNews)
	v1.GET("/analyze-sentiments", s.analyzeSentiments)
	v1.GET("/generate-report-and-download", s.generateReport)

	r.GET("/health", s.health)
	r.GET("/metrics", s.metricsStats)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	stats := s.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if !s.metrics.Healthy() {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) metricsStats(c *gin.Context) {
	stats := s.metrics.GetStats()
	if s.limiter != nil {
		stats["rate_limits"] = s.limiter.Stats()
	}
	if s.store != nil {
		storeStats, err := s.store.GetStats(c.Request.Context())
		if err != nil {
			s.log.Warn("storage stats unavailable", "error", err)
		} else {
			stats["storage"] = storeStats
		}
	}
	c.JSON(http.StatusOK, stats)
}

// statusFor maps an error kind to the HTTP status reported to clients.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindFetch:
		return http.StatusBadGateway
	case errs.KindConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.log.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(statusFor(err), gin.H{"error": msg + ": " + err.Error()})
}
