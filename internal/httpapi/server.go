package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bakkerme/prensa/internal/view"
)

// Server exposes the news view over HTTP. All state lives in the view; the
// handlers translate requests into view operations and return snapshots.
type Server struct {
	view *view.View
	echo *echo.Echo
}

func NewServer(v *view.View) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType},
	}))

	s := &Server{view: v, echo: e}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.GET("/view", s.handleView)
	api.POST("/params", s.handleParams)
	api.POST("/refresh", s.handleRefresh)
	api.POST("/filter", s.handleFilter)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "prensa",
	})
}

// handleView returns the current snapshot: filtered items, parameters,
// loading state and the displayed error, if any.
func (s *Server) handleView(c echo.Context) error {
	return c.JSON(http.StatusOK, s.view.Snapshot())
}

// handleParams merges the posted fetch parameters into the view. A change
// issues a new fetch; the response reports whether one was started.
func (s *Server) handleParams(c echo.Context) error {
	var p view.Params
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid parameters",
		})
	}
	epoch := s.view.SetParams(c.Request().Context(), p)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"fetching": epoch != 0,
		"params":   s.view.Params(),
	})
}

// handleRefresh issues a refresh with the current parameters. ?force=1 asks
// the backend to bypass its cache.
func (s *Server) handleRefresh(c echo.Context) error {
	force := c.QueryParam("force") == "1" || c.QueryParam("force") == "true"
	s.view.Refresh(c.Request().Context(), force)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"fetching": true,
		"force":    force,
	})
}

type filterRequest struct {
	Source string `json:"source"`
	Query  string `json:"query"`
}

// handleFilter updates the local-only source and search filters and returns
// the re-derived snapshot. No fetch is issued.
func (s *Server) handleFilter(c echo.Context) error {
	var req filterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid filter",
		})
	}
	s.view.SetFilter(req.Source, req.Query)
	return c.JSON(http.StatusOK, s.view.Snapshot())
}
