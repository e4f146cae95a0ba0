package resolve

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"arcvalue/pkg/itemvalue"
)

// DefaultTargetBase is the item site queried by the direct source.
const DefaultTargetBase = "https://arctracker.io"

// DirectSource fetches the item page from the target site and extracts the
// value from its HTML.
type DirectSource struct {
	base      string
	client    *http.Client
	extractor *itemvalue.Extractor
	userAgent string
}

// NewDirectSource creates a DirectSource for base (e.g. https://arctracker.io).
func NewDirectSource(base string, client *http.Client) *DirectSource {
	if base == "" {
		base = DefaultTargetBase
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &DirectSource{
		base:      strings.TrimRight(base, "/"),
		client:    client,
		extractor: itemvalue.NewExtractor(itemvalue.DefaultWindow),
		userAgent: DefaultUserAgent,
	}
}

// WithExtractor replaces the default value extractor.
func (d *DirectSource) WithExtractor(e *itemvalue.Extractor) *DirectSource {
	d.extractor = e
	return d
}

// WithUserAgent overrides the User-Agent header.
func (d *DirectSource) WithUserAgent(ua string) *DirectSource {
	d.userAgent = ua
	return d
}

// Name implements Source.
func (d *DirectSource) Name() itemvalue.SourceTag { return itemvalue.SourceDirect }

// ItemURL returns the page URL of slug.
func (d *DirectSource) ItemURL(slug string) string {
	return d.base + "/items/" + url.PathEscape(slug)
}

// Fetch implements Source.
func (d *DirectSource) Fetch(ctx context.Context, _ itemvalue.ItemQuery, slug string) (*Hit, error) {
	target := d.ItemURL(slug)
	body, err := getBody(ctx, d.client, target, d.userAgent, "text/html")
	if err != nil {
		return nil, err
	}
	content := itemvalue.RawContent{Text: string(body), Kind: itemvalue.KindHTML}
	v := d.extractor.ExtractContent(content)
	if v == nil {
		return nil, eris.Wrapf(itemvalue.ErrSourceUnavailable, "direct: no value in %s", target)
	}
	return &Hit{Value: v, URL: target}, nil
}
