package models

import "time"

// Edge is the durable record of one friendship. User1ID and User2ID are the
// internal identifiers of both sides in lexicographic order.
type Edge struct {
	Fingerprint uint64
	User1ID     string
	User2ID     string
	CreatedAt   time.Time
}

// Connects reports whether the edge joins a and b, in either order.
func (e *Edge) Connects(a, b string) bool {
	return (e.User1ID == a && e.User2ID == b) || (e.User1ID == b && e.User2ID == a)
}
