package resolve

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"arcvalue/pkg/itemvalue"
)

// FixtureSource reads a pre-captured HTML snapshot named <slug>.html from a
// directory. It is the offline last resort and never writes.
type FixtureSource struct {
	dir       string
	extractor *itemvalue.Extractor
}

// NewFixtureSource creates a FixtureSource rooted at dir.
func NewFixtureSource(dir string) *FixtureSource {
	return &FixtureSource{dir: dir, extractor: itemvalue.NewExtractor(itemvalue.DefaultWindow)}
}

// WithExtractor replaces the default value extractor.
func (f *FixtureSource) WithExtractor(e *itemvalue.Extractor) *FixtureSource {
	f.extractor = e
	return f
}

// Name implements Source.
func (f *FixtureSource) Name() itemvalue.SourceTag { return itemvalue.SourceFixture }

// Path returns the snapshot path for slug.
func (f *FixtureSource) Path(slug string) string {
	return filepath.Join(f.dir, slug+".html")
}

// Fetch implements Source. A present snapshot is a hit even when it holds no
// number, so callers can tell "reached a source" from "reached none".
func (f *FixtureSource) Fetch(_ context.Context, _ itemvalue.ItemQuery, slug string) (*Hit, error) {
	path := f.Path(slug)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(itemvalue.ErrSourceUnavailable, "fixture: no snapshot for %s", slug)
		}
		return nil, eris.Wrapf(err, "fixture: read %s", path)
	}
	v := f.extractor.ExtractContent(itemvalue.RawContent{Text: string(data), Kind: itemvalue.KindHTML})
	return &Hit{Value: v, URL: path}, nil
}
