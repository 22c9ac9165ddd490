package repomanager

import (
	"context"

	"github.com/dmitrijs2005/netwerker/internal/server/repositories/edges"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process; data is lost on exit.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore()}
}

func (m *MemoryRepositoryManager) Prepare(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Users() users.Repository       { return m.store }
func (m *MemoryRepositoryManager) Edges() edges.Repository       { return m.store }
func (m *MemoryRepositoryManager) Close(context.Context) error   { return nil }
