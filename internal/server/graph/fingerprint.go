// Package graph implements the friendship-graph engine: the order-independent
// edge fingerprint and the breadth-first distance search run against a
// remote edge store.
package graph

import "github.com/cespare/xxhash/v2"

// Fingerprint returns the xxh64 digest of the two identifiers sorted
// lexicographically and concatenated, so Fingerprint(a, b) == Fingerprint(b, a).
//
// It is a lookup key, not an integrity check. Distinct pairs may collide.
func Fingerprint(id1, id2 string) uint64 {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	d := xxhash.New()
	_, _ = d.WriteString(id1)
	_, _ = d.WriteString(id2)
	return d.Sum64()
}

// SortedPair returns a and b in lexicographic order.
func SortedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
