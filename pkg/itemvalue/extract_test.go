package itemvalue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValue(t *testing.T, want float64, got *float64) {
	t.Helper()
	require.NotNil(t, got, "expected %v got nil", want)
	assert.InDelta(t, want, *got, 1e-9)
}

func TestExtractKeywordValue(t *testing.T) {
	requireValue(t, 1250, Extract("Value: 1,250 credits"))
}

func TestExtractNoNumbers(t *testing.T) {
	assert.Nil(t, Extract("no numbers here"))
	assert.Nil(t, Extract(""))
	assert.Nil(t, Extract("<div>price</div>"))
}

func TestExtractProximityBeatsLargerNumber(t *testing.T) {
	requireValue(t, 12, Extract("price 12 other 900"))
}

func TestExtractFarKeywordFallsBackToMax(t *testing.T) {
	text := "price of this item is listed further down the page: 7 and then 900"
	requireValue(t, 900, Extract(text))
}

func TestExtractWindowBoundary(t *testing.T) {
	within := "worth" + strings.Repeat("x", DefaultWindow) + "5 then 900"
	requireValue(t, 5, Extract(within))

	beyond := "worth" + strings.Repeat("x", DefaultWindow+1) + "5 then 900"
	requireValue(t, 900, Extract(beyond))
}

func TestExtractIgnoresScriptAndStyle(t *testing.T) {
	requireValue(t, 42, Extract("<script>9999</script><div>value 42</div>"))
	requireValue(t, 40, Extract("<style>.a{width:9999px}</style><p>12 and 40</p>"))
}

func TestExtractZeroIsNotAbsence(t *testing.T) {
	requireValue(t, 0, Extract("0 items in stock"))
}

func TestExtractDiscardsUnparseableTokens(t *testing.T) {
	requireValue(t, 7, Extract("build 1.2.3 sells 7"))
	// The keyword-adjacent token is rejected, so the fallback rule decides.
	requireValue(t, 8, Extract("value 1.2.3 later 8"))
}

func TestExtractDecimalsAndEntities(t *testing.T) {
	requireValue(t, 12.5, Extract("<td>Price</td><td>12.5</td>"))
	requireValue(t, 1000, Extract("value&nbsp;&nbsp;1,000"))
	requireValue(t, 1250, Extract("Worth 1,250."))
}

func TestExtractorCustomWindow(t *testing.T) {
	text := "value is about 10, or 99"
	narrow := NewExtractor(5)
	assert.Equal(t, 5, narrow.Window())
	requireValue(t, 99, narrow.Extract(text))
	requireValue(t, 10, NewExtractor(0).Extract(text))
}

func TestExtractContent(t *testing.T) {
	got := NewExtractor(DefaultWindow).ExtractContent(RawContent{Text: "VALUE 3,400", Kind: KindOCR})
	requireValue(t, 3400, got)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		tok  string
		want float64
		ok   bool
	}{
		{"1,250", 1250, true},
		{"12.75", 12.75, true},
		{"7.", 7, true},
		{"1.2.3", 0, false},
		{",", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.tok)
		assert.Equal(t, tt.ok, ok, tt.tok)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.tok)
		}
	}
}

func TestMaxNumberKeepsLargest(t *testing.T) {
	requireValue(t, 300, MaxNumber("10 300 20 300.0"))
	assert.Nil(t, MaxNumber("none"))
}
