// Package lookup drives one end-to-end item lookup: capture or typed name,
// cleanup, normalization, resolution, persistence and notification.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"arcvalue/pkg/itemvalue"
	"arcvalue/pkg/ocr"
	"arcvalue/pkg/store"
)

// Capturer reads the item name printed near the cursor.
type Capturer interface {
	CaptureRegion(ctx context.Context, cursor *image.Point) (itemvalue.RawContent, error)
}

// Resolver turns a query into a tagged result.
type Resolver interface {
	Resolve(ctx context.Context, q itemvalue.ItemQuery) itemvalue.LookupResult
}

var (
	pipeRuns  = regexp.MustCompile(`\|+`)
	nameNoise = regexp.MustCompile(`[^a-zA-Z0-9 \-_()']`)
)

// CleanName repairs common recognition artifacts: runs of '|' are read as
// 'i' and other characters outside the item-name alphabet become spaces.
func CleanName(text string) string {
	s := pipeRuns.ReplaceAllString(text, "i")
	s = nameNoise.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Coordinator serialises lookups; one runs at a time.
type Coordinator struct {
	mu             sync.Mutex
	capturer       Capturer
	resolver       Resolver
	store          store.Store
	hub            *store.Hub
	now            func() time.Time
	captureTimeout time.Duration
	lookupTimeout  time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCapturer enables RunCaptureAndLookup.
func WithCapturer(c Capturer) Option { return func(co *Coordinator) { co.capturer = c } }

// WithHub publishes every persisted record to h.
func WithHub(h *store.Hub) Option { return func(co *Coordinator) { co.hub = h } }

// WithNow overrides the clock used for error records.
func WithNow(now func() time.Time) Option { return func(co *Coordinator) { co.now = now } }

// WithTimeouts bounds the capture and the resolve steps. Zero means no limit.
func WithTimeouts(capture, lookup time.Duration) Option {
	return func(co *Coordinator) {
		co.captureTimeout = capture
		co.lookupTimeout = lookup
	}
}

func New(resolver Resolver, st store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{resolver: resolver, store: st, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CanCapture reports whether a capturer is configured.
func (c *Coordinator) CanCapture() bool { return c.capturer != nil }

// RunCaptureAndLookup captures the region near cursor (nil when unknown),
// cleans the recognized text and resolves it. Failures are persisted as an
// error record, published and returned.
func (c *Coordinator) RunCaptureAndLookup(ctx context.Context, cursor *image.Point) (res itemvalue.LookupResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			res, err = c.fail(ctx, itemvalue.ItemQuery{}, eris.Errorf("lookup: panic: %v", p))
		}
	}()

	if c.capturer == nil {
		return c.fail(ctx, itemvalue.ItemQuery{}, ocr.ErrCaptureUnavailable)
	}
	cctx, cancel := withTimeout(ctx, c.captureTimeout)
	raw, err := c.capturer.CaptureRegion(cctx, cursor)
	cancel()
	if err != nil {
		return c.fail(ctx, itemvalue.ItemQuery{}, err)
	}
	if strings.TrimSpace(raw.Text) == "" {
		return c.fail(ctx, itemvalue.ItemQuery{}, fmt.Errorf("%w: %w", ocr.ErrNoText, itemvalue.ErrInvalidQuery))
	}
	name := CleanName(raw.Text)
	zap.L().Debug("lookup: captured", zap.String("raw", raw.Text), zap.String("cleaned", name))
	return c.lookup(ctx, name)
}

// LookupName resolves a typed item name through the same flow.
func (c *Coordinator) LookupName(ctx context.Context, name string) (itemvalue.LookupResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(ctx, strings.TrimSpace(name))
}

func (c *Coordinator) lookup(ctx context.Context, name string) (itemvalue.LookupResult, error) {
	q := itemvalue.NewQuery(name)
	if q.Slug() == "" {
		return c.fail(ctx, q, itemvalue.ErrInvalidQuery)
	}
	lctx, cancel := withTimeout(ctx, c.lookupTimeout)
	res := c.resolver.Resolve(lctx, q)
	cancel()
	if res.Source == itemvalue.SourceError {
		cause := errors.New(res.Error)
		if res.Error == itemvalue.ErrInvalidQuery.Error() {
			cause = itemvalue.ErrInvalidQuery
		}
		return c.fail(ctx, q, cause)
	}

	last := store.FromResult(name, res)
	if err := c.store.SaveLast(ctx, last); err != nil {
		return c.fail(ctx, q, eris.Wrap(err, "lookup: persist last checked"))
	}
	c.record(ctx, name, res)
	c.publish(last)
	zap.L().Info("lookup: resolved",
		zap.String("id", res.ID),
		zap.String("item", name),
		zap.String("slug", res.Slug),
		zap.String("source", string(res.Source)),
		zap.Bool("found", res.Found()))
	return res, nil
}

// fail persists and publishes an error record and returns err alongside an
// error-tagged result.
func (c *Coordinator) fail(ctx context.Context, q itemvalue.ItemQuery, err error) (itemvalue.LookupResult, error) {
	at := c.now()
	res := itemvalue.LookupResult{
		ID:        uuid.NewString(),
		Query:     q,
		Slug:      q.Slug(),
		Source:    itemvalue.SourceError,
		Error:     err.Error(),
		Timestamp: at,
	}
	last := store.ErrorRecord(at)
	if serr := c.store.SaveLast(ctx, last); serr != nil {
		zap.L().Error("lookup: persist error record", zap.Error(serr))
	}
	c.record(ctx, q.RawName, res)
	c.publish(last)
	zap.L().Warn("lookup: failed", zap.String("id", res.ID), zap.String("item", q.RawName), zap.Error(err))
	return res, err
}

func (c *Coordinator) record(ctx context.Context, item string, res itemvalue.LookupResult) {
	rec, ok := c.store.(store.HistoryRecorder)
	if !ok {
		return
	}
	if err := rec.RecordLookup(ctx, item, res); err != nil {
		zap.L().Warn("lookup: record history", zap.Error(err))
	}
}

func (c *Coordinator) publish(last store.LastChecked) {
	if c.hub != nil {
		c.hub.Publish(last)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
