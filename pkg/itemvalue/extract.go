package itemvalue

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWindow is how many non-digit characters may separate a keyword from
// its number in the proximity rule.
const DefaultWindow = 30

// Keywords that announce a value on an item page.
var Keywords = []string{"value", "price", "worth"}

var numberToken = regexp.MustCompile(`[0-9][0-9,.]{0,10}`)

// Extractor finds the most plausible number in untrusted page or OCR text.
// The first number following a keyword wins; otherwise the largest number
// anywhere in the text.
type Extractor struct {
	window    int
	proximity *regexp.Regexp
}

// NewExtractor returns an Extractor whose keyword window is window characters.
// Non-positive windows fall back to DefaultWindow.
func NewExtractor(window int) *Extractor {
	if window <= 0 {
		window = DefaultWindow
	}
	pattern := fmt.Sprintf(`(%s)[^\d-]{0,%d}([0-9][0-9,.]{0,10})`, strings.Join(Keywords, "|"), window)
	return &Extractor{window: window, proximity: regexp.MustCompile(pattern)}
}

var defaultExtractor = NewExtractor(DefaultWindow)

// Extract runs the default extractor over text.
func Extract(text string) *float64 {
	return defaultExtractor.Extract(text)
}

// Window returns the keyword window in characters.
func (e *Extractor) Window() int { return e.window }

// Extract returns the best candidate number in text, or nil when the text
// holds no parseable number. Markup is stripped first.
func (e *Extractor) Extract(text string) *float64 {
	clean := PageText(text)
	for _, m := range e.proximity.FindAllStringSubmatch(clean, -1) {
		if v, ok := ParseNumber(m[2]); ok {
			return &v
		}
	}
	return MaxNumber(clean)
}

// ExtractContent is Extract over a RawContent payload.
func (e *Extractor) ExtractContent(c RawContent) *float64 {
	return e.Extract(c.Text)
}

// MaxNumber returns the numerically largest number token in text. Ties keep
// the earliest token. Nil when there is none.
func MaxNumber(text string) *float64 {
	var best *float64
	for _, tok := range numberToken.FindAllString(text, -1) {
		v, ok := ParseNumber(tok)
		if !ok {
			continue
		}
		if best == nil || v > *best {
			best = &v
		}
	}
	return best
}

// ParseNumber normalizes a number token: thousands commas are removed, only
// digits and the decimal point are kept, and the rest must parse as a finite
// float. Tokens such as "1.2.3" are rejected.
func ParseNumber(tok string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, tok)
	cleaned = strings.TrimSuffix(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
