// Package repomanager vends the user and edge repositories for the selected
// store driver and prepares the backing store (migrations, indexes).
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/server/repositories/edges"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
)

// Store drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type RepositoryManager interface {
	// Prepare brings the store schema up to date.
	Prepare(ctx context.Context) error
	Users() users.Repository
	Edges() edges.Repository
	Close(ctx context.Context) error
}

// Options selects and addresses the backing store.
type Options struct {
	Driver        string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		return OpenPostgres(ctx, opts.DatabaseDSN)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverMemory:
		return NewMemoryRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
