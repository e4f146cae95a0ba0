package resolve

import (
	"net/http"
	"time"

	"arcvalue/pkg/itemvalue"
)

// ChainConfig names the endpoints of the default source chain.
type ChainConfig struct {
	TargetBase  string
	ProxyBase   string
	FixturesDir string
	Timeout     time.Duration
	UserAgent   string
	// Window overrides the extractor keyword window when positive.
	Window int
}

// DefaultChain builds direct, proxy and fixture sources in that fixed order.
// An empty FixturesDir leaves the fixture source out.
func DefaultChain(cfg ChainConfig, client *http.Client) []Source {
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	direct := NewDirectSource(cfg.TargetBase, client)
	proxy := NewProxySource(cfg.ProxyBase, client)
	if cfg.UserAgent != "" {
		direct.WithUserAgent(cfg.UserAgent)
		proxy.userAgent = cfg.UserAgent
	}
	extractor := itemvalue.NewExtractor(cfg.Window)
	direct.WithExtractor(extractor)
	sources := []Source{direct, proxy}
	if cfg.FixturesDir != "" {
		sources = append(sources, NewFixtureSource(cfg.FixturesDir).WithExtractor(extractor))
	}
	return sources
}
