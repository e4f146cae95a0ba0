package main

import (
	"context"
	"errors"
	"image"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"arcvalue/pkg/app"
	"arcvalue/pkg/itemvalue"
	"arcvalue/pkg/lookup"
	"arcvalue/pkg/ocr"
	"arcvalue/pkg/resolve"
	"arcvalue/pkg/store"
)

// maxImportBytes caps POST /values payloads.
const maxImportBytes = 8 << 20

type server struct {
	app        *app.App
	client     *http.Client
	limiter    *rate.Limiter
	targetBase string
	userAgent  string
}

func newServer(a *app.App) *server {
	cfg := a.Config
	limit := rate.Inf
	if cfg.Server.UpstreamRPS > 0 {
		limit = rate.Limit(cfg.Server.UpstreamRPS)
	}
	burst := cfg.Server.UpstreamBurst
	if burst <= 0 {
		burst = 1
	}
	target := strings.TrimRight(cfg.Source.TargetBase, "/")
	if target == "" {
		target = resolve.DefaultTargetBase
	}
	return &server{
		app:        a,
		client:     a.HTTPClient,
		limiter:    rate.NewLimiter(limit, burst),
		targetBase: target,
		userAgent:  cfg.Source.UserAgent,
	}
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.healthHandler)
	r.GET("/lookup", s.lookupHandler)
	r.GET("/last", s.lastHandler)
	r.GET("/values", s.exportValuesHandler)
	r.POST("/values", s.importValuesHandler)
	r.POST("/values/reset", s.resetValuesHandler)
	r.POST("/capture", s.captureHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "capture": s.app.Coordinator.CanCapture()})
}

// lookupHandler fetches the item page on behalf of clients that cannot reach
// the target site and scans it for a value.
func (s *server) lookupHandler(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	slug := itemvalue.Slug(name)
	target := s.targetBase + "/items/" + url.PathEscape(slug)

	if err := s.limiter.Wait(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "exception", "message": err.Error()})
		return
	}
	body, err := resolve.GetPage(c.Request.Context(), s.client, target, s.userAgent)
	if err != nil {
		var se *resolve.StatusError
		if errors.As(err, &se) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed", "status": se.Code})
			return
		}
		zap.L().Warn("server: lookup fetch", zap.String("url", target), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "exception", "message": err.Error()})
		return
	}
	value := itemvalue.ScanElements(string(body))
	zap.L().Debug("server: lookup", zap.String("slug", slug), zap.Bool("found", value != nil))
	c.JSON(http.StatusOK, gin.H{"name": name, "slug": slug, "value": value, "url": target})
}

func (s *server) lastHandler(c *gin.Context) {
	last, ok, err := s.app.Store.Last(c.Request.Context())
	if err != nil {
		s.internalError(c, "last", err)
		return
	}
	item, value := lookup.Overlay(last, ok)
	resp := gin.H{"found": ok, "overlay": gin.H{"item": item, "value": value}}
	if ok {
		resp["last"] = last
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) exportValuesHandler(c *gin.Context) {
	table, err := s.app.Store.Values(c.Request.Context())
	if err != nil {
		s.internalError(c, "export values", err)
		return
	}
	data, err := table.Encode()
	if err != nil {
		s.internalError(c, "export values", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="arcr_values.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *server) importValuesHandler(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	table, err := store.DecodeValues(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON file for DB"})
		return
	}
	if err := s.app.Store.ReplaceValues(c.Request.Context(), table); err != nil {
		s.internalError(c, "import values", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(table)})
}

func (s *server) resetValuesHandler(c *gin.Context) {
	table := store.SampleValues()
	if err := s.app.Store.ReplaceValues(c.Request.Context(), table); err != nil {
		s.internalError(c, "reset values", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": len(table)})
}

// captureHandler runs one capture-and-lookup. Optional x and y query
// parameters give the cursor position.
func (s *server) captureHandler(c *gin.Context) {
	cursor, err := cursorFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.app.Coordinator.RunCaptureAndLookup(c.Request.Context(), cursor)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ocr.ErrCaptureUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, ocr.ErrNoText), errors.Is(err, itemvalue.ErrInvalidQuery):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error(), "result": res})
		return
	}
	c.JSON(http.StatusOK, res)
}

func cursorFromQuery(c *gin.Context) (*image.Point, error) {
	xs, ys := c.Query("x"), c.Query("y")
	if xs == "" && ys == "" {
		return nil, nil
	}
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		return nil, errors.New("x and y must both be integers")
	}
	return &image.Point{X: x, Y: y}, nil
}

func (s *server) internalError(c *gin.Context, op string, err error) {
	zap.L().Error("server: "+op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
