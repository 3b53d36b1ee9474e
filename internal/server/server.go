package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/entity"
	"github.com/joseph-ayodele/gazette-ocr/internal/export"
	"github.com/joseph-ayodele/gazette-ocr/internal/metrics"
)

const serviceName = "gazette-ocr"

// Service is the extraction core behind the HTTP API.
type Service interface {
	Search(ctx context.Context, name string) (entity.SearchResponse, error)
	Extract(ctx context.Context, name string, maxResults int) ([]entity.ExtractResult, error)
	ExtractFromURL(ctx context.Context, pdfURL string) (entity.ExtractResult, error)
}

// Server is the JSON HTTP boundary of the extraction core.
type Server struct {
	echo    *echo.Echo
	svc     Service
	export  *export.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(svc Service, exp *export.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if exp == nil {
		exp = export.NewService(logger)
	}
	s := &Server{
		echo:    echo.New(),
		svc:     svc,
		export:  exp,
		metrics: m,
		logger:  logger.With("component", "http"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), id)))
		},
	}))
	s.echo.Use(s.observe)
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api/v1")
	api.GET("/health", s.health)
	api.POST("/search", s.search)
	api.POST("/extract", s.extract)
	api.POST("/extract/url", s.extractURL)
	api.GET("/extract/xlsx", s.extractXLSX)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// observe logs each request and records its latency by route template.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		elapsed := time.Since(start)
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(route, strconv.Itoa(status), elapsed)
		s.logger.Info("http request",
			"method", c.Request().Method,
			"route", route,
			"status", status,
			"elapsed_ms", elapsed.Milliseconds(),
			"request_id", common.RequestIDFromContext(c.Request().Context()),
		)
		return nil
	}
}
