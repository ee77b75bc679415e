// Package strings provides string canonicalization utilities.
package strings

import (
	"sort"
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Canonical trims, lowercases, deduplicates, and sorts a slice. The result is
// a total order over the folded elements, so semantically equal inputs become
// byte-identical regardless of original order or casing.
//
// Example:
//
//	Canonical([]string{"Coffee", "coffee ", "Tea"})
//	// Returns: []string{"coffee", "tea"}
func Canonical(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		folded := strings.ToLower(strings.TrimSpace(v))
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; !ok {
			seen[folded] = struct{}{}
			result = append(result, folded)
		}
	}

	sort.Strings(result)
	return result
}

// FoldKey lowercases and trims a map key for canonical comparison.
func FoldKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
