package lookup

import (
	"fmt"
	"strconv"

	"arcvalue/pkg/store"
)

// Overlay renders the last-checked record as the two overlay labels.
func Overlay(last store.LastChecked, ok bool) (item, value string) {
	if !ok || last.Item == "" {
		return "No item", ""
	}
	if last.Value == nil {
		return last.Item, "— not found"
	}
	return last.Item, "— " + FormatValue(*last.Value)
}

// FormatValue prints v the shortest way that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summary is a one-line description including source and local time.
func Summary(last store.LastChecked, ok bool) string {
	if !ok {
		return "No item checked yet"
	}
	name := last.Item
	if name == "" {
		name = "(unknown)"
	}
	value := "not found"
	if last.Value != nil {
		value = FormatValue(*last.Value)
	}
	src := last.Source
	if src == "" {
		src = "unknown"
	}
	s := fmt.Sprintf("%s — %s (source: %s", name, value, src)
	if last.Timestamp > 0 {
		s += " • " + last.Time().Format("15:04:05")
	}
	return s + ")"
}
