// Package memory is a mutex-guarded in-process store implementing both
// users.Repository and edges.Repository. It backs the "memory" store driver
// and the service tests.
package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
)

type Store struct {
	mu     sync.RWMutex
	nextID int
	users  map[string]*models.User
	order  []string
	edges  map[uint64]*models.Edge
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*models.User),
		edges: make(map[uint64]*models.Edge),
		now:   time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	c.FriendIDs = slices.Clone(u.FriendIDs)
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// findLocked expects s.mu to be held.
func (s *Store) findLocked(f users.Filter) *models.User {
	if f.ID != "" {
		return s.users[f.ID]
	}
	for _, id := range s.order {
		u := s.users[id]
		if (f.UUID != "" && u.UUID == f.UUID) || (f.Email != "" && u.Email == f.Email) {
			return u
		}
	}
	return nil
}

func (s *Store) Find(ctx context.Context, f users.Filter) (*models.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findLocked(f)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (s *Store) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(users.ByEmail(user.Email)) != nil || s.findLocked(users.ByUUID(user.UUID)) != nil {
		return nil, common.ErrAlreadyExists
	}

	s.nextID++
	user.ID = strconv.Itoa(s.nextID)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.users[user.ID] = clone(user)
	s.order = append(s.order, user.ID)
	return user, nil
}

func (s *Store) Update(ctx context.Context, id string, patch users.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if patch.Email != nil && *patch.Email != u.Email {
		if s.findLocked(users.ByEmail(*patch.Email)) != nil {
			return common.ErrAlreadyExists
		}
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.User, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, clone(s.users[id]))
	}
	return result, nil
}

func (s *Store) Exists(ctx context.Context, fingerprint uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[fingerprint]
	return ok, nil
}

func (s *Store) Get(ctx context.Context, fingerprint uint64) (*models.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[fingerprint]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (s *Store) Neighbors(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, u.FriendIDs...), nil
}

func (s *Store) Insert(ctx context.Context, edge *models.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[edge.Fingerprint]; ok {
		return common.ErrConflict
	}
	u1, ok1 := s.users[edge.User1ID]
	u2, ok2 := s.users[edge.User2ID]
	if !ok1 || !ok2 {
		return common.ErrorNotFound
	}

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = s.now().UTC()
	}
	c := *edge
	s.edges[edge.Fingerprint] = &c
	u1.FriendIDs = append(u1.FriendIDs, u2.ID)
	u2.FriendIDs = append(u2.FriendIDs, u1.ID)
	return nil
}
