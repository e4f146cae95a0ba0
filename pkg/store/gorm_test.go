package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcvalue/pkg/itemvalue"
)

// openTestDB is opt-in: set DB_DSN_TEST=1 and DB_DSN to a scratch database.
func openTestDB(t *testing.T) *GormStore {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	s, err := OpenPostgres(os.Getenv("DB_DSN"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStore_RoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	want := LastChecked{Item: "Wolfpack", Value: f64(5000), Source: "direct", Timestamp: time.Now().UnixMilli()}
	require.NoError(t, s.SaveLast(ctx, want))
	require.NoError(t, s.SaveLast(ctx, want))
	got, ok, err := s.Last(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.ReplaceValues(ctx, ValueTable{"wolfpack": json.RawMessage(`5000`)}))
	require.NoError(t, s.ReplaceValues(ctx, ValueTable{"bandage": json.RawMessage(`{"v":1}`)}))
	table, err := s.Values(ctx)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.JSONEq(t, `{"v":1}`, string(table["bandage"]))

	res := itemvalue.LookupResult{ID: "test-id", Slug: "wolfpack", Value: f64(5000), Source: itemvalue.SourceDirect, Timestamp: time.Now()}
	require.NoError(t, s.RecordLookup(ctx, "Wolfpack", res))
	hist, err := s.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "test-id", hist[0].LookupID)
}
