// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flusslauf/pegelmonitor/internal/analysis"
	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/usecases"
)

var validRanges = map[entities.TimeRange]bool{
	entities.Range1Hour: true, entities.Range2Hours: true,
	entities.Range6Hours: true, entities.Range12Hours: true,
	entities.Range24Hours: true, entities.Range48Hours: true,
	entities.Range1Week: true, entities.Range1Month: true,
	entities.Range3Months: true, entities.Range6Months: true,
}

var validKinds = map[entities.ReadingKind]bool{
	entities.KindLevel: true, entities.KindFlow: true, entities.KindTemperature: true,
}

// Server bundles the gin router and its dependencies
type Server struct {
	addr    string
	useCase *usecases.RiverUseCase
	engine  *gin.Engine
}

// NewServer constructs the HTTP server with routes and middleware
func NewServer(addr string, useCase *usecases.RiverUseCase) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{addr: addr, useCase: useCase, engine: engine}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine (for tests)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api")
	v1.GET("/rivers", s.handleRivers)
	v1.GET("/rivers/:name", s.handleRiver)
	v1.GET("/rivers/:name/change", s.handleRiverChange)
}

func (s *Server) handleRivers(c *gin.Context) {
	c.JSON(http.StatusOK, s.useCase.CachedRiversData(c.Request.Context()))
}

func (s *Server) handleRiver(c *gin.Context) {
	rd, ok := s.findRiver(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (s *Server) handleRiverChange(c *gin.Context) {
	rd, ok := s.findRiver(c)
	if !ok {
		return
	}

	kind := entities.ReadingKind(c.DefaultQuery("kind", string(entities.KindLevel)))
	if !validKinds[kind] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown reading kind"})
		return
	}
	window := entities.TimeRange(c.DefaultQuery("range", string(entities.Range24Hours)))
	if !validRanges[window] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time range"})
		return
	}

	c.JSON(http.StatusOK, analysis.RiverChange(rd, kind, window))
}

func (s *Server) findRiver(c *gin.Context) (entities.RiverData, bool) {
	name := c.Param("name")
	data := s.useCase.CachedRiversData(c.Request.Context())
	for _, rd := range data.Rivers {
		if strings.EqualFold(rd.Name, name) {
			return rd, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown water body"})
	return entities.RiverData{}, false
}

// Run starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
