// Package links parses wikilinks out of note bodies and resolves them
// against the notes of a vault.
package links

import (
	"regexp"
	"strings"
)

// wikilinkPattern matches [[target]], [[target#heading]], [[target|alias]]
// and [[target#heading|alias]].
var wikilinkPattern = regexp.MustCompile(`\[\[([^\]|#]+)(?:#([^\]|]+))?(?:\|([^\]]+))?\]\]`)

// Link is a single wikilink occurrence.
type Link struct {
	Raw     string `json:"raw"`
	Target  string `json:"target"`
	Heading string `json:"heading,omitempty"`
	Alias   string `json:"alias,omitempty"`
}

// Extract returns every wikilink in content, in document order.
// Duplicates are kept.
func Extract(content string) []Link {
	matches := wikilinkPattern.FindAllStringSubmatch(content, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		l := toLink(m)
		if l.Target == "" {
			continue
		}
		links = append(links, l)
	}
	return links
}

func toLink(m []string) Link {
	return Link{
		Raw:     m[0],
		Target:  strings.TrimSpace(m[1]),
		Heading: strings.TrimSpace(m[2]),
		Alias:   strings.TrimSpace(m[3]),
	}
}

// Targets returns just the target names of the links in content.
func Targets(content string) []string {
	found := Extract(content)
	targets := make([]string, len(found))
	for i, l := range found {
		targets[i] = l.Target
	}
	return targets
}

// Rewrite replaces every wikilink in content with the result of fn.
func Rewrite(content string, fn func(Link) string) string {
	return wikilinkPattern.ReplaceAllStringFunc(content, func(raw string) string {
		return fn(toLink(wikilinkPattern.FindStringSubmatch(raw)))
	})
}

// Format renders l back into wikilink syntax.
func Format(l Link) string {
	var b strings.Builder
	b.WriteString("[[")
	b.WriteString(l.Target)
	if l.Heading != "" {
		b.WriteString("#")
		b.WriteString(l.Heading)
	}
	if l.Alias != "" {
		b.WriteString("|")
		b.WriteString(l.Alias)
	}
	b.WriteString("]]")
	return b.String()
}
