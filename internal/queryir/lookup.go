package queryir

import "strings"

// LookupSep separates a column from its lookup suffix: age__gte.
const LookupSep = "__"

// DefaultLookup is used when a key has no suffix.
const DefaultLookup = "eq"

// ParseLookup splits "column__suffix" on the last separator. A key
// without a separator, or with an empty suffix, uses DefaultLookup.
func ParseLookup(key string) (column, lookup string) {
	i := strings.LastIndex(key, LookupSep)
	if i <= 0 {
		return key, DefaultLookup
	}
	column, lookup = key[:i], key[i+len(LookupSep):]
	if lookup == "" {
		return column, DefaultLookup
	}
	return column, lookup
}
