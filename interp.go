package robopages

import (
	"regexp"
	"strings"
)

// Placeholder syntax: ${name} or ${name or fallback}. Names may contain
// word characters and dots.
var placeholderRe = regexp.MustCompile(`(?i)\$\{(\s*[\w.]+)\s*(\s+or\s+([^}]+))?\}`)

// Expand substitutes every placeholder in s using values. A name missing
// from values resolves to its inline fallback when one is declared,
// otherwise to an empty string.
func Expand(s string, values map[string]string) string {
	matches := placeholderRe.FindAllStringSubmatch(s, -1)
	if matches == nil {
		return s
	}
	for _, m := range matches {
		expression := m[0]
		name := strings.TrimSpace(m[1])

		replacement, ok := values[name]
		if !ok && m[2] != "" {
			replacement = strings.TrimSpace(m[3])
		}
		s = strings.ReplaceAll(s, expression, replacement)
	}
	return s
}
