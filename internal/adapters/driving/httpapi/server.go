package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// Server exposes the driving ports as a JSON API.
type Server struct {
	ports  *Ports
	depth  domain.Depth
	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultDepth sets the depth used when a request does not name one.
func WithDefaultDepth(depth domain.Depth) Option {
	return func(s *Server) {
		if depth.IsValid() {
			s.depth = depth
		}
	}
}

// NewServer creates the API server and registers its routes.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		depth: domain.DepthStandard,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger())
	s.engine = engine
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api")
	{
		api.GET("/document", s.getDocument)
		api.GET("/pages/:n", s.getPage)
		api.GET("/toc", s.getTOC)
		api.POST("/index", s.postIndex)

		api.POST("/chat", s.postChat)
		api.GET("/chat/messages", s.getChatMessages)
		api.GET("/chat/suggestions", s.getSuggestions)
		api.POST("/search", s.postSearch)

		api.POST("/concepts", s.postConcepts)
		api.POST("/summary", s.postSummary)
		api.POST("/flashcards", s.postFlashcards)
		api.POST("/mcq", s.postMCQ)

		api.GET("/navigation", s.getNavigation)
		api.POST("/navigation", s.postNavigation)
		api.POST("/navigation/settled", s.postNavigationSettled)

		api.GET("/stats", s.getStats)
	}
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http: shutdown: %v", err)
		}
	}()

	logger.Info("http: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotInitialized),
		errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrDuplicateInitialization):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGenerationParse), errors.Is(err, domain.ErrEmbeddingService):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body with its mapped status.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

// badRequest rejects a malformed request body or parameter.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// unavailable reports a route whose port was not wired.
func unavailable(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: what + " is not available"})
}
