// Package server exposes the solver over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alexiusacademia/gotruss/internal/analysis"
	"github.com/alexiusacademia/gotruss/internal/config"
	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/materials"
	"github.com/alexiusacademia/gotruss/internal/solver"
	"github.com/alexiusacademia/gotruss/internal/truss"
	"github.com/alexiusacademia/gotruss/internal/trussfile"
	"github.com/alexiusacademia/gotruss/internal/version"
	"github.com/gin-gonic/gin"
)

// Response wraps every JSON answer
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Server routes HTTP requests to the analysis
type Server struct {
	cfg    *config.Config
	log    logger.Logger
	engine *gin.Engine
}

// New builds the router. gin runs in release mode; requests are logged
// through log at debug level.
func New(cfg *config.Config, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{cfg: cfg, log: log, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/healthz", s.health)
	api := s.engine.Group("/api/v1")
	{
		api.POST("/solve", s.solve)
		api.GET("/materials", s.materials)
	}
	return s
}

// Handler returns the router as an http.Handler
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", logger.F("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			logger.F("method", c.Request.Method),
			logger.F("path", c.Request.URL.Path),
			logger.F("status", c.Writer.Status()),
			logger.F("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: gin.H{"version": version.Version}})
}

func (s *Server) materials(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: materials.All()})
}

// solve accepts a structure document and answers with the result report.
// Query parameters: scale, solver, tolerance, and format=geojson for a
// feature collection instead of the report.
func (s *Server) solve(c *gin.Context) {
	var doc trussfile.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("parsing structure: %w", err))
		return
	}

	opts, err := s.options(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	st, err := doc.Build()
	if err != nil {
		fail(c, statusOf(err), err)
		return
	}

	res, err := analysis.Solve(c.Request.Context(), st, opts...)
	if err != nil {
		fail(c, statusOf(err), err)
		return
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, trussfile.GeoJSON(res))
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: trussfile.NewReport(res)})
}

func (s *Server) options(c *gin.Context) ([]analysis.Option, error) {
	opts := []analysis.Option{
		analysis.WithLogger(s.log),
		analysis.WithTolerance(s.cfg.Solver.Tolerance),
		analysis.WithLoadScale(s.cfg.Solver.LoadScale),
	}

	method := c.DefaultQuery("solver", s.cfg.Solver.Method)
	sv, err := solver.New(method, s.cfg.Solver.MaxSweeps)
	if err != nil {
		return nil, err
	}
	opts = append(opts, analysis.WithSolver(sv))

	if v := c.Query("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || !(scale > 0) {
			return nil, fmt.Errorf("scale must be a positive number, got %q", v)
		}
		opts = append(opts, analysis.WithLoadScale(scale))
	}
	if v := c.Query("tolerance"); v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil || !(tol > 0) {
			return nil, fmt.Errorf("tolerance must be a positive number, got %q", v)
		}
		opts = append(opts, analysis.WithTolerance(tol))
	}
	return opts, nil
}

// statusOf maps domain errors to 422 and everything else to 500
func statusOf(err error) int {
	var verr *trussfile.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, solver.ErrSingular),
		errors.Is(err, solver.ErrNotConverged),
		errors.Is(err, truss.ErrInvalidGeometry),
		errors.Is(err, truss.ErrInvalidMaterial),
		errors.Is(err, truss.ErrNoMaterial):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, Response{Success: false, Message: err.Error()})
}
