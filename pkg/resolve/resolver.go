// Package resolve turns an item query into a LookupResult by trying an ordered
// list of value sources. The first success wins; failures of individual
// sources only move the chain forward.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"arcvalue/pkg/itemvalue"
)

// Hit is what a source produced for a query.
type Hit struct {
	Value *float64
	URL   string
}

// Source produces a value for one query. A non-nil error means the source is
// unavailable for this query and the next one should be tried.
type Source interface {
	Name() itemvalue.SourceTag
	Fetch(ctx context.Context, q itemvalue.ItemQuery, slug string) (*Hit, error)
}

// Resolver tries sources strictly in order, one request each.
type Resolver struct {
	sources []Source
	now     func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNow overrides the clock, useful for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver over the given sources.
func New(sources []Source, opts ...Option) *Resolver {
	r := &Resolver{sources: sources, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: every outcome, including panics inside a source, is
// reported through the returned LookupResult.
func (r *Resolver) Resolve(ctx context.Context, q itemvalue.ItemQuery) (res itemvalue.LookupResult) {
	res = itemvalue.LookupResult{
		ID:        uuid.NewString(),
		Query:     q,
		Timestamp: r.now(),
	}
	defer func() {
		if p := recover(); p != nil {
			zap.L().Error("resolve: unexpected failure",
				zap.String("name", q.RawName),
				zap.Any("panic", p),
			)
			res.Value = nil
			res.SourceURL = ""
			res.Source = itemvalue.SourceError
			res.Error = fmt.Sprint(p)
		}
	}()

	res.Slug = itemvalue.Slug(q.RawName)
	if res.Slug == "" {
		res.Source = itemvalue.SourceError
		res.Error = itemvalue.ErrInvalidQuery.Error()
		return res
	}

	var lastErr error
	for _, s := range r.sources {
		hit, err := s.Fetch(ctx, q, res.Slug)
		if err != nil {
			zap.L().Debug("resolve: source unavailable, trying next",
				zap.String("source", string(s.Name())),
				zap.String("slug", res.Slug),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if hit == nil {
			lastErr = eris.Wrapf(itemvalue.ErrSourceUnavailable, "%s", s.Name())
			continue
		}
		res.Source = s.Name()
		res.Value = hit.Value
		res.SourceURL = hit.URL
		if s.Name() == itemvalue.SourceFixture && lastErr != nil {
			res.Error = lastErr.Error()
		}
		zap.L().Info("resolve: resolved",
			zap.String("id", res.ID),
			zap.String("slug", res.Slug),
			zap.String("source", string(res.Source)),
			zap.Bool("found", res.Found()),
		)
		return res
	}

	res.Source = itemvalue.SourceNotFound
	if lastErr != nil {
		res.Error = fmt.Sprintf("%s: %v", itemvalue.ErrAllSourcesExhausted, lastErr)
	} else {
		res.Error = itemvalue.ErrAllSourcesExhausted.Error()
	}
	zap.L().Info("resolve: not found", zap.String("slug", res.Slug), zap.String("error", res.Error))
	return res
}

// Lookup is Resolve for callers that need an error for terminal outcomes.
// Not-found results are returned with ErrAllSourcesExhausted.
func (r *Resolver) Lookup(ctx context.Context, q itemvalue.ItemQuery) (itemvalue.LookupResult, error) {
	if itemvalue.Slug(q.RawName) == "" {
		return itemvalue.LookupResult{Query: q, Source: itemvalue.SourceError, Error: itemvalue.ErrInvalidQuery.Error(), Timestamp: r.now()}, itemvalue.ErrInvalidQuery
	}
	res := r.Resolve(ctx, q)
	switch res.Source {
	case itemvalue.SourceNotFound:
		return res, itemvalue.ErrAllSourcesExhausted
	case itemvalue.SourceError:
		return res, errors.New(res.Error)
	}
	return res, nil
}
