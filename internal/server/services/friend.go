package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/graph"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/edges"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
)

type FriendService struct {
	users    users.Repository
	edges    edges.Repository
	searcher *graph.Searcher
	logger   logging.Logger
}

func NewFriendService(u users.Repository, e edges.Repository, searcher *graph.Searcher, logger logging.Logger) *FriendService {
	return &FriendService{users: u, edges: e, searcher: searcher, logger: logger.With("module", "friend_service")}
}

func (s *FriendService) resolve(ctx context.Context, uuid string) (*models.User, error) {
	u, err := s.users.Find(ctx, users.ByUUID(uuid))
	if err != nil {
		return nil, common.StoreError(err)
	}
	return u, nil
}

// AddFriend records a friendship between the users identified by uuid and
// friendUUID. An existing friendship yields common.ErrConflict.
func (s *FriendService) AddFriend(ctx context.Context, uuid, friendUUID string) error {
	if uuid == friendUUID {
		return fmt.Errorf("%w: a user cannot befriend themselves", common.ErrValidation)
	}
	a, err := s.resolve(ctx, uuid)
	if err != nil {
		return err
	}
	b, err := s.resolve(ctx, friendUUID)
	if err != nil {
		return err
	}

	lo, hi := graph.SortedPair(a.ID, b.ID)
	edge := &models.Edge{Fingerprint: graph.Fingerprint(lo, hi), User1ID: lo, User2ID: hi}
	if err := s.edges.Insert(ctx, edge); err != nil {
		if !errors.Is(err, common.ErrConflict) {
			s.logger.Error(ctx, "friendship insert failed", "error", err)
		}
		return common.StoreError(err)
	}

	s.logger.Info(ctx, "friendship added", "user1", a.UUID, "user2", b.UUID)
	return nil
}

// Friends lists the friends of uuid without secrets or friend lists. Ids
// that no longer resolve are skipped.
func (s *FriendService) Friends(ctx context.Context, uuid string) ([]*models.User, error) {
	u, err := s.resolve(ctx, uuid)
	if err != nil {
		return nil, err
	}

	result := make([]*models.User, 0, len(u.FriendIDs))
	for _, id := range u.FriendIDs {
		f, err := s.users.Find(ctx, users.ByID(id))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.logger.Warn(ctx, "dangling friend id", "uuid", uuid, "friend_id", id)
				continue
			}
			return nil, common.StoreError(err)
		}
		result = append(result, f.Public())
	}
	return result, nil
}

// Distance returns the hop count between two users. A missing path is a
// result with Found == false, not an error.
func (s *FriendService) Distance(ctx context.Context, uuid, otherUUID string) (graph.Result, error) {
	a, err := s.resolve(ctx, uuid)
	if err != nil {
		return graph.Result{}, err
	}
	b, err := s.resolve(ctx, otherUUID)
	if err != nil {
		return graph.Result{}, err
	}
	return s.searcher.Distance(ctx, a.ID, b.ID)
}
