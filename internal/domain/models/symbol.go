package models

import "strings"

// NormalizeSymbol canonicalizes an exchange code for identity comparison.
// Symbols are compared by exact string match after trimming whitespace.
func NormalizeSymbol(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSymbols trims every entry and drops empties, preserving order.
// Duplicates are kept as-is; the configured list is assumed pre-cleaned.
func NormalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := NormalizeSymbol(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
