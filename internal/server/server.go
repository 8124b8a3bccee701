// Package server exposes the signal history over HTTP: a JSON API for
// tooling and an echarts dashboard for humans.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fxsentry/internal/dispatch"
	"fxsentry/internal/logger"
	"fxsentry/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HistoryReader serves the read side of the store.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]store.SignalRow, error)
}

// Server hosts the read-only HTTP surface. It never mutates engine state.
type Server struct {
	addr    string
	history HistoryReader
	loop    *dispatch.Loop
	router  *gin.Engine
}

func New(addr string, history HistoryReader, loop *dispatch.Loop) *Server {
	if addr == "" {
		addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{addr: addr, history: history, loop: loop, router: router}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/signals", s.handleSignals)
	s.router.GET("/", s.handleDashboard)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Infof("server: listening on %s", s.addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	state := dispatch.StateIdle
	if s.loop != nil {
		state = s.loop.State()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dispatch_state": string(state)})
}

func (s *Server) handleSignals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": rows})
}

// handleDashboard renders recent history as a line chart of entry vs live
// price per alert, newest last.
func (s *Server) handleDashboard(c *gin.Context) {
	rows, err := s.history.Recent(c.Request.Context(), 100)
	if err != nil {
		c.String(http.StatusInternalServerError, "history unavailable: %v", err)
		return
	}
	// Recent returns newest first; the chart reads left to right in time
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Signal History", Subtitle: "entry vs live price per alert"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	labels := make([]string, 0, len(rows))
	entries := make([]opts.LineData, 0, len(rows))
	lives := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, fmt.Sprintf("%s %s", r.Pair, r.Timestamp.Format("01-02 15:04")))
		entries = append(entries, opts.LineData{Value: r.EntryPrice})
		lives = append(lives, opts.LineData{Value: r.LivePrice})
	}
	line.SetXAxis(labels).
		AddSeries("entry", entries).
		AddSeries("live", lives)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		logger.Warnf("server: dashboard render failed: %v", err)
	}
}
