// Package monitorapi exposes a read-only Echo HTTP surface over the live
// DeviceMirror state, for dashboards and health checks that should not go
// through the OSC control path.
package monitorapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"oscmix/internal/mirror"
	"oscmix/internal/osc"
)

// Server is the Echo application.
type Server struct {
	echo   *echo.Echo
	mirror *mirror.Mirror
	model  string
}

// New constructs an Echo app with the monitoring routes registered.
func New(mir *mirror.Mirror, model string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	s := &Server{echo: e, mirror: mir, model: model}
	s.registerRoutes()
	return s
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			slog.Debug("monitorapi request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/api/state", s.handleState)
	s.echo.GET("/api/durec", s.handleDurec)
}

// Run starts Echo and blocks until the process is shut down externally.
func (s *Server) Run(addr string) error {
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Model: s.model})
}

type argJSON struct {
	Tag   string      `json:"tag"`
	Value interface{} `json:"value"`
}

type stateResponse struct {
	Refreshing bool                 `json:"refreshing"`
	Values     map[string][]argJSON `json:"values"`
}

func (s *Server) handleState(c echo.Context) error {
	snap := s.mirror.Snapshot()
	values := make(map[string][]argJSON, len(snap))
	for path, args := range snap {
		out := make([]argJSON, len(args))
		for i, a := range args {
			out[i] = argToJSON(a)
		}
		values[path] = out
	}
	return c.JSON(http.StatusOK, stateResponse{
		Refreshing: s.mirror.Refreshing(),
		Values:     values,
	})
}

type durecFileResponse struct {
	Name       string `json:"name"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Length     int64  `json:"length"`
}

func argToJSON(a osc.Arg) argJSON {
	switch a.Tag {
	case 'i':
		return argJSON{Tag: "i", Value: a.Int}
	case 'f':
		return argJSON{Tag: "f", Value: a.Float}
	case 's':
		return argJSON{Tag: "s", Value: a.Str}
	case 'b':
		return argJSON{Tag: "b", Value: a.Blob}
	case 'T':
		return argJSON{Tag: "T", Value: true}
	case 'F':
		return argJSON{Tag: "F", Value: false}
	case 'N':
		return argJSON{Tag: "N", Value: nil}
	case 'I':
		return argJSON{Tag: "I", Value: nil}
	default:
		return argJSON{Tag: string(a.Tag)}
	}
}

func (s *Server) handleDurec(c echo.Context) error {
	files := s.mirror.DurecFiles()
	out := make([]durecFileResponse, len(files))
	for i, f := range files {
		out[i] = durecFileResponse{Name: f.Name, SampleRate: f.SampleRate, Channels: f.Channels, Length: f.Length}
	}
	return c.JSON(http.StatusOK, out)
}
