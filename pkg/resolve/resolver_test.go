package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcvalue/pkg/itemvalue"
)

// stubSource implements Source for testing.
type stubSource struct {
	name   itemvalue.SourceTag
	hit    *Hit
	err    error
	panics bool
	calls  *[]itemvalue.SourceTag
}

func (s *stubSource) Name() itemvalue.SourceTag { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ itemvalue.ItemQuery, _ string) (*Hit, error) {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}
	if s.panics {
		panic("source blew up")
	}
	return s.hit, s.err
}

func value(v float64) *float64 { return &v }

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestResolve_FirstSuccessShortCircuits(t *testing.T) {
	var calls []itemvalue.SourceTag
	direct := &stubSource{name: itemvalue.SourceDirect, hit: &Hit{Value: value(5), URL: "https://x/items/a"}, calls: &calls}
	proxy := &stubSource{name: itemvalue.SourceProxy, hit: &Hit{Value: value(9)}, calls: &calls}

	res := New([]Source{direct, proxy}, WithNow(func() time.Time { return fixedNow })).
		Resolve(context.Background(), itemvalue.NewQuery("A"))

	assert.Equal(t, itemvalue.SourceDirect, res.Source)
	require.NotNil(t, res.Value)
	assert.Equal(t, 5.0, *res.Value)
	assert.Equal(t, "https://x/items/a", res.SourceURL)
	assert.Empty(t, res.Error)
	assert.Equal(t, fixedNow, res.Timestamp)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []itemvalue.SourceTag{itemvalue.SourceDirect}, calls)
}

func TestResolve_StrictOrder(t *testing.T) {
	var calls []itemvalue.SourceTag
	sources := []Source{
		&stubSource{name: itemvalue.SourceDirect, err: itemvalue.ErrSourceUnavailable, calls: &calls},
		&stubSource{name: itemvalue.SourceProxy, err: itemvalue.ErrSourceUnavailable, calls: &calls},
		&stubSource{name: itemvalue.SourceFixture, hit: &Hit{Value: value(1)}, calls: &calls},
	}
	res := New(sources).Resolve(context.Background(), itemvalue.NewQuery("Item"))

	assert.Equal(t, itemvalue.SourceFixture, res.Source)
	assert.Equal(t, []itemvalue.SourceTag{itemvalue.SourceDirect, itemvalue.SourceProxy, itemvalue.SourceFixture}, calls)
}

func TestResolve_FixtureCarriesUpstreamError(t *testing.T) {
	sources := []Source{
		&stubSource{name: itemvalue.SourceDirect, err: errors.New("dial tcp: refused")},
		&stubSource{name: itemvalue.SourceProxy, err: errors.New("proxy HTTP 502")},
		&stubSource{name: itemvalue.SourceFixture, hit: &Hit{Value: value(77), URL: "fixtures/x.html"}},
	}
	res := New(sources).Resolve(context.Background(), itemvalue.NewQuery("x"))

	assert.Equal(t, itemvalue.SourceFixture, res.Source)
	assert.Equal(t, "x", res.Slug)
	require.NotNil(t, res.Value)
	assert.Equal(t, 77.0, *res.Value)
	assert.Equal(t, "proxy HTTP 502", res.Error)
}

func TestResolve_AllSourcesFail(t *testing.T) {
	sources := []Source{
		&stubSource{name: itemvalue.SourceDirect, err: errors.New("direct down")},
		&stubSource{name: itemvalue.SourceProxy, err: errors.New("proxy down")},
		&stubSource{name: itemvalue.SourceFixture, err: itemvalue.ErrSourceUnavailable},
	}
	res := New(sources).Resolve(context.Background(), itemvalue.NewQuery("Nothing Here"))

	assert.Equal(t, itemvalue.SourceNotFound, res.Source)
	assert.Nil(t, res.Value)
	assert.Contains(t, res.Error, itemvalue.ErrAllSourcesExhausted.Error())
}

func TestResolve_NoSources(t *testing.T) {
	res := New(nil).Resolve(context.Background(), itemvalue.NewQuery("thing"))
	assert.Equal(t, itemvalue.SourceNotFound, res.Source)
	assert.Equal(t, itemvalue.ErrAllSourcesExhausted.Error(), res.Error)
}

func TestResolve_InvalidQuerySkipsSources(t *testing.T) {
	var calls []itemvalue.SourceTag
	src := &stubSource{name: itemvalue.SourceDirect, hit: &Hit{Value: value(1)}, calls: &calls}

	res := New([]Source{src}).Resolve(context.Background(), itemvalue.NewQuery(" !! "))

	assert.Equal(t, itemvalue.SourceError, res.Source)
	assert.Equal(t, itemvalue.ErrInvalidQuery.Error(), res.Error)
	assert.Empty(t, calls)
}

func TestResolve_NilHitIsUnavailable(t *testing.T) {
	sources := []Source{
		&stubSource{name: itemvalue.SourceDirect},
		&stubSource{name: itemvalue.SourceProxy, hit: &Hit{Value: value(3)}},
	}
	res := New(sources).Resolve(context.Background(), itemvalue.NewQuery("a"))
	assert.Equal(t, itemvalue.SourceProxy, res.Source)
}

func TestResolve_PanicBecomesErrorResult(t *testing.T) {
	sources := []Source{&stubSource{name: itemvalue.SourceDirect, panics: true}}

	var res itemvalue.LookupResult
	require.NotPanics(t, func() {
		res = New(sources).Resolve(context.Background(), itemvalue.NewQuery("boom"))
	})
	assert.Equal(t, itemvalue.SourceError, res.Source)
	assert.Nil(t, res.Value)
	assert.Equal(t, "source blew up", res.Error)
}

func TestLookup_Errors(t *testing.T) {
	r := New([]Source{&stubSource{name: itemvalue.SourceDirect, err: errors.New("down")}})

	_, err := r.Lookup(context.Background(), itemvalue.NewQuery(""))
	assert.ErrorIs(t, err, itemvalue.ErrInvalidQuery)

	res, err := r.Lookup(context.Background(), itemvalue.NewQuery("thing"))
	assert.ErrorIs(t, err, itemvalue.ErrAllSourcesExhausted)
	assert.Equal(t, itemvalue.SourceNotFound, res.Source)
}
