// Package store persists the last lookup outcome and the user-maintained
// slug -> value table, and notifies readers when either changes.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"arcvalue/pkg/itemvalue"
)

// ErrNotObject is returned when an imported value table is not a JSON object.
var ErrNotObject = errors.New("invalid value table: top-level JSON must be an object")

// LastChecked is the persisted record of the most recent lookup.
type LastChecked struct {
	Item      string   `json:"item"`
	Value     *float64 `json:"value"`
	Source    string   `json:"source"`
	Timestamp int64    `json:"timestamp"`
}

// Time returns Timestamp as a time.Time.
func (l LastChecked) Time() time.Time { return time.UnixMilli(l.Timestamp) }

// FromResult builds the record for a finished lookup of item.
func FromResult(item string, res itemvalue.LookupResult) LastChecked {
	ts := res.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return LastChecked{
		Item:      item,
		Value:     res.Value,
		Source:    string(res.Source),
		Timestamp: ts.UnixMilli(),
	}
}

// ErrorRecord is persisted when a lookup could not run to completion.
func ErrorRecord(at time.Time) LastChecked {
	return LastChecked{Source: string(itemvalue.SourceError), Timestamp: at.UnixMilli()}
}

// ValueTable maps slugs to arbitrary JSON values.
type ValueTable map[string]json.RawMessage

// DecodeValues parses an imported table. Anything but a JSON object,
// including null, is rejected with ErrNotObject.
func DecodeValues(data []byte) (ValueTable, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var table ValueTable
	if err := json.Unmarshal(trimmed, &table); err != nil {
		return nil, errors.Join(ErrNotObject, err)
	}
	if table == nil {
		table = ValueTable{}
	}
	return table, nil
}

// Encode renders the table as indented JSON.
func (t ValueTable) Encode() ([]byte, error) {
	if t == nil {
		t = ValueTable{}
	}
	return json.MarshalIndent(t, "", "  ")
}

// Store is the persistence boundary used by the coordinator and the server.
type Store interface {
	SaveLast(ctx context.Context, last LastChecked) error
	// Last reports false when nothing has been recorded yet.
	Last(ctx context.Context) (LastChecked, bool, error)
	Values(ctx context.Context) (ValueTable, error)
	ReplaceValues(ctx context.Context, table ValueTable) error
	Close() error
}

// HistoryRecorder is implemented by stores that keep a log of lookups.
type HistoryRecorder interface {
	RecordLookup(ctx context.Context, item string, res itemvalue.LookupResult) error
}
