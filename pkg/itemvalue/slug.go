package itemvalue

import (
	"regexp"
	"strings"
)

var (
	apostrophes = strings.NewReplacer("'", "", "’", "")
	nonSlugRun  = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedSep = regexp.MustCompile(`_+`)
)

// Slug maps a free-text item name to its canonical identifier, e.g.
// "Adrenaline Shot" -> "adrenaline_shot". Apostrophes are dropped without a
// separator. An empty result means the name is unusable as a query.
func Slug(rawName string) string {
	s := strings.ToLower(strings.TrimSpace(rawName))
	s = apostrophes.Replace(s)
	s = nonSlugRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return repeatedSep.ReplaceAllString(s, "_")
}
