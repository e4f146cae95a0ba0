package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"arcvalue/pkg/itemvalue"
)

// DefaultProxyBase is where the lookup proxy listens by default.
const DefaultProxyBase = "http://localhost:4000"

// ProxySource asks the lookup proxy for an already extracted value. It exists
// for hosts where the target site cannot be fetched directly.
type ProxySource struct {
	base      string
	client    *http.Client
	userAgent string
}

// NewProxySource creates a ProxySource for the proxy at base.
func NewProxySource(base string, client *http.Client) *ProxySource {
	if base == "" {
		base = DefaultProxyBase
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &ProxySource{base: strings.TrimRight(base, "/"), client: client, userAgent: DefaultUserAgent}
}

// Name implements Source.
func (p *ProxySource) Name() itemvalue.SourceTag { return itemvalue.SourceProxy }

// LookupURL returns the proxy request URL for a raw item name.
func (p *ProxySource) LookupURL(name string) string {
	return p.base + "/lookup?" + url.Values{"name": {name}}.Encode()
}

// proxyReply is the subset of the proxy response the client relies on.
type proxyReply struct {
	Value *float64 `json:"value"`
	URL   string   `json:"url"`
}

// Fetch implements Source. A missing or zero value counts as unavailable.
func (p *ProxySource) Fetch(ctx context.Context, q itemvalue.ItemQuery, _ string) (*Hit, error) {
	target := p.LookupURL(q.RawName)
	body, err := getBody(ctx, p.client, target, p.userAgent, "application/json")
	if err != nil {
		return nil, err
	}
	var reply proxyReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, eris.Wrap(err, "proxy: decode reply")
	}
	if reply.Value == nil || *reply.Value == 0 {
		return nil, eris.Wrapf(itemvalue.ErrSourceUnavailable, "proxy: no value for %q", q.RawName)
	}
	return &Hit{Value: reply.Value, URL: reply.URL}, nil
}
