// Package edges stores friendships keyed by the pair fingerprint and keeps
// the per-user friend lists in step with them.
package edges

import (
	"context"

	"github.com/dmitrijs2005/netwerker/internal/server/models"
)

// Repository satisfies graph.EdgeStore and adds the write side.
//
// Get returns common.ErrorNotFound when no edge carries the fingerprint.
// Neighbors returns an empty list for an unknown user. Insert writes the
// friendship record and appends each side to the other's friend list
// atomically; it returns common.ErrConflict when the fingerprint is taken
// and common.ErrorNotFound when either user is missing.
type Repository interface {
	Exists(ctx context.Context, fingerprint uint64) (bool, error)
	Get(ctx context.Context, fingerprint uint64) (*models.Edge, error)
	Neighbors(ctx context.Context, userID string) ([]string, error)
	Insert(ctx context.Context, edge *models.Edge) error
}
