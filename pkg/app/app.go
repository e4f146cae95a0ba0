// Package app wires configuration into the resolver chain, capture pipeline,
// state store and lookup coordinator shared by the server and the CLI.
package app

import (
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"arcvalue/pkg/config"
	"arcvalue/pkg/lookup"
	"arcvalue/pkg/ocr"
	"arcvalue/pkg/resolve"
	"arcvalue/pkg/store"
)

// App holds the long-lived components built from one Config.
type App struct {
	Config      *config.Config
	HTTPClient  *http.Client
	Store       store.Store
	Hub         *store.Hub
	Resolver    *resolve.Resolver
	Pipeline    *ocr.Pipeline // nil when no frame provider is configured
	Coordinator *lookup.Coordinator
}

// New builds every component. rec reads the captured region; with a nil rec
// capture stays disabled. The caller owns Close.
func New(cfg *config.Config, rec ocr.Recognizer) (*App, error) {
	st, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	client := resolve.NewHTTPClient(cfg.Source.HTTPTimeout)
	res := resolve.New(resolve.DefaultChain(ChainConfig(cfg.Source), client))
	hub := store.NewHub()

	a := &App{
		Config:     cfg,
		HTTPClient: client,
		Store:      st,
		Hub:        hub,
		Resolver:   res,
		Pipeline:   NewPipeline(cfg.Capture, rec),
	}
	opts := []lookup.Option{
		lookup.WithHub(hub),
		lookup.WithTimeouts(cfg.Capture.Timeout, 0),
	}
	if a.Pipeline != nil {
		opts = append(opts, lookup.WithCapturer(a.Pipeline))
	}
	a.Coordinator = lookup.New(res, st, opts...)
	return a, nil
}

// ChainConfig maps source settings onto the resolver chain.
func ChainConfig(c config.SourceConfig) resolve.ChainConfig {
	return resolve.ChainConfig{
		TargetBase:  c.TargetBase,
		ProxyBase:   c.ProxyBase,
		FixturesDir: c.FixturesDir,
		Timeout:     c.HTTPTimeout,
		UserAgent:   c.UserAgent,
		Window:      c.Window,
	}
}

// OpenStore returns the store selected by c.Driver.
func OpenStore(c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "", "file":
		return store.NewFileStore(c.Dir)
	case "postgres":
		return store.OpenPostgres(c.DatabaseURL, c.AutoMigrate)
	}
	return nil, eris.Errorf("app: unknown store driver %q", c.Driver)
}

// NewPipeline builds the capture pipeline, or nil when capture is disabled or
// no recognizer is given. The screenshot provider is probed before the
// display stream.
func NewPipeline(c config.CaptureConfig, rec ocr.Recognizer) *ocr.Pipeline {
	if !c.Enabled() || rec == nil {
		return nil
	}
	var providers []ocr.FrameProvider
	if c.ScreenshotCmd != "" {
		providers = append(providers, ocr.NewScreenshotProvider(c.ScreenshotCmd))
	}
	if c.StreamCmd != "" {
		providers = append(providers, ocr.NewCommandStreamProvider(c.StreamCmd))
	}
	return ocr.NewPipeline(rec, providers...).
		WithRegion(c.Width, c.Height).
		WithDebugDir(c.DebugDir)
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Close(); err != nil {
		zap.L().Warn("app: close store", zap.Error(err))
		return err
	}
	return nil
}
