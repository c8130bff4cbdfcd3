// Package namekey produces the canonical lookup key used to decide whether
// two free-text item names refer to the same product.
package namekey

import "strings"

// Normalize lowercases the name, trims surrounding whitespace, and collapses
// interior whitespace runs to a single space. Matching is exact after this
// transform: no stemming, no punctuation stripping.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, " ")
}
