package itemvalue

import "time"

// ItemQuery is a user-facing item name, typed or recognized from screen.
type ItemQuery struct {
	RawName string `json:"raw_name"`
}

// NewQuery builds a query from a raw item name.
func NewQuery(rawName string) ItemQuery {
	return ItemQuery{RawName: rawName}
}

// Slug returns the normalized identifier of the query.
func (q ItemQuery) Slug() string {
	return Slug(q.RawName)
}

// ContentKind tells where a RawContent payload came from.
type ContentKind string

const (
	KindHTML ContentKind = "html"
	KindOCR  ContentKind = "ocr"
)

// RawContent is an opaque payload produced by one source.
type RawContent struct {
	Text string
	Kind ContentKind
}

// SourceTag records which source (or failure mode) produced a result.
type SourceTag string

const (
	SourceDirect   SourceTag = "direct"
	SourceProxy    SourceTag = "proxy"
	SourceFixture  SourceTag = "fixture"
	SourceNotFound SourceTag = "not_found"
	SourceError    SourceTag = "error"
)

// LookupResult is the outcome of one lookup attempt. It is created once and
// superseded by the next lookup rather than updated.
type LookupResult struct {
	ID        string    `json:"id"`
	Query     ItemQuery `json:"query"`
	Slug      string    `json:"slug"`
	Value     *float64  `json:"value"`
	Source    SourceTag `json:"source"`
	SourceURL string    `json:"source_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Found reports whether the result carries a value.
func (r LookupResult) Found() bool {
	return r.Value != nil
}
