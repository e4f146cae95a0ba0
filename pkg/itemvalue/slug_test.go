package itemvalue

import (
	"regexp"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Adrenaline Shot", "adrenaline_shot"},
		{"  O'Hare's   Item!! ", "ohares_item"},
		{"", ""},
		{"   \t\n", ""},
		{"!!! ---", ""},
		{"Rusty’s Gear", "rustys_gear"},
		{"__a__b__", "a_b"},
		{"Mk. II (Blue)", "mk_ii_blue"},
		{"ARC Alloy x3", "arc_alloy_x3"},
		{"Café Crème", "caf_cr_me"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestSlugProperties(t *testing.T) {
	prop := func(s string) bool {
		got := Slug(s)
		if got != Slug(s) {
			return false
		}
		if Slug(got) != got {
			return false
		}
		return got == "" || slugShape.MatchString(got)
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 2000}); err != nil {
		t.Fatalf("slug property failed: %v", err)
	}
}

func TestItemQuerySlug(t *testing.T) {
	q := NewQuery("Adrenaline Shot")
	assert.Equal(t, "adrenaline_shot", q.Slug())
	assert.Equal(t, "", NewQuery("  ").Slug())
}
