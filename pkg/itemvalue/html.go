package itemvalue

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PageText flattens markup into lowercase text with single spaces. Tags
// become separators and the bodies of script and style elements are dropped.
// Plain text passes through unchanged apart from case and spacing.
func PageText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapse(strings.ToLower(b.String()))
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if isSkippedTag(atom.Lookup(name)) {
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// ScanElements is the element-level extraction used by the lookup proxy. For
// each element whose text, descendants included, mentions a keyword it takes
// the largest number found in that text, the next sibling element and the
// parent; the largest positive candidate across the page wins. Every ancestor
// of a keyword qualifies, so on most pages this is the largest number in the
// body. Without any keyword the whole page text is scanned. Zero is reported
// as nil.
func ScanElements(doc string) *float64 {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nonZero(MaxNumber(PageText(doc)))
	}

	var found *float64
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isSkippedTag(n.DataAtom) {
				return
			}
			if mentionsKeyword(nodeText(n)) {
				nearby := nodeText(n) + " " + nodeText(nextElement(n)) + " " + nodeText(n.Parent)
				if v := MaxNumber(nearby); v != nil && *v > 0 && (found == nil || *v > *found) {
					found = v
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if found == nil {
		found = MaxNumber(collapse(nodeText(root)))
	}
	return nonZero(found)
}

func mentionsKeyword(text string) bool {
	low := strings.ToLower(text)
	for _, kw := range Keywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// nodeText collects all text under n, space separated, without script/style.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if isSkippedTag(n.DataAtom) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func isSkippedTag(a atom.Atom) bool {
	return a == atom.Script || a == atom.Style
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
