package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
)

// Default search caps.
const (
	DefaultMaxVisited = 10000
	DefaultMaxDepth   = 6
)

// Search outcomes reported to an Observer.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeLimit    = "limit_exceeded"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// EdgeStore is the part of the edge repository the search needs.
// Get returns common.ErrorNotFound when no edge carries the fingerprint.
type EdgeStore interface {
	Exists(ctx context.Context, fp uint64) (bool, error)
	Get(ctx context.Context, fp uint64) (*models.Edge, error)
	Neighbors(ctx context.Context, userID string) ([]string, error)
}

// Observer receives one call per finished search.
type Observer interface {
	ObserveSearch(outcome string, visited int)
}

// Limits bounds the work of a single search. Zero disables a cap.
type Limits struct {
	MaxVisited int
	MaxDepth   int
}

// Result of a distance search. Hops is only meaningful when Found is true.
type Result struct {
	Hops    int
	Found   bool
	Visited int
}

// Searcher computes shortest hop counts over the implicit graph exposed by
// an EdgeStore. It holds no per-search state and is safe for concurrent use.
type Searcher struct {
	store    EdgeStore
	limits   Limits
	confirm  bool
	logger   logging.Logger
	observer Observer
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLimits overrides the default caps.
func WithLimits(l Limits) Option {
	return func(s *Searcher) { s.limits = l }
}

// WithEdgeConfirmation controls whether a fingerprint hit is checked against
// the pair stored with the edge. Enabled by default.
func WithEdgeConfirmation(confirm bool) Option {
	return func(s *Searcher) { s.confirm = confirm }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Searcher) { s.logger = l.With("module", "graph_search") }
}

func WithObserver(o Observer) Option {
	return func(s *Searcher) { s.observer = o }
}

func NewSearcher(store EdgeStore, opts ...Option) *Searcher {
	s := &Searcher{
		store:   store,
		limits:  Limits{MaxVisited: DefaultMaxVisited, MaxDepth: DefaultMaxDepth},
		confirm: true,
		logger:  logging.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type frontierItem struct {
	id    string
	depth int
}

// Distance returns the number of hops between startID and targetID.
//
// A node's direct edge to the target is probed by fingerprint before its
// neighbour list is fetched. The FIFO frontier yields nodes in non-decreasing
// depth, so the first hit is minimal. When no path exists the result has
// Found == false and err == nil. Store failures abort the search with an
// error wrapping common.ErrStoreUnavailable; exceeding a cap returns
// common.ErrSearchLimitExceeded; ctx cancellation returns ctx.Err().
func (s *Searcher) Distance(ctx context.Context, startID, targetID string) (res Result, err error) {
	defer func() { s.observe(ctx, res, err) }()

	if startID == targetID {
		return Result{Hops: 0, Found: true}, nil
	}

	queue := []frontierItem{{id: startID, depth: 0}}
	visited := make(map[string]struct{})

	for head := 0; head < len(queue); head++ {
		if err := ctx.Err(); err != nil {
			return Result{Visited: len(visited)}, err
		}

		cur := queue[head]
		queue[head] = frontierItem{}

		if _, seen := visited[cur.id]; seen {
			continue
		}

		if s.limits.MaxDepth > 0 && cur.depth >= s.limits.MaxDepth {
			return Result{Visited: len(visited)}, fmt.Errorf("%w: depth cap %d reached", common.ErrSearchLimitExceeded, s.limits.MaxDepth)
		}
		if s.limits.MaxVisited > 0 && len(visited) >= s.limits.MaxVisited {
			return Result{Visited: len(visited)}, fmt.Errorf("%w: visited cap %d reached", common.ErrSearchLimitExceeded, s.limits.MaxVisited)
		}
		visited[cur.id] = struct{}{}

		// reachable only through an inconsistent friend list
		if cur.id == targetID {
			return Result{Hops: cur.depth, Found: true, Visited: len(visited)}, nil
		}

		connected, err := s.directEdge(ctx, cur.id, targetID)
		if err != nil {
			return Result{Visited: len(visited)}, common.StoreError(err)
		}
		if connected {
			return Result{Hops: cur.depth + 1, Found: true, Visited: len(visited)}, nil
		}

		neighbors, err := s.store.Neighbors(ctx, cur.id)
		if err != nil {
			return Result{Visited: len(visited)}, common.StoreError(err)
		}
		for _, n := range neighbors {
			if _, seen := visited[n]; !seen {
				queue = append(queue, frontierItem{id: n, depth: cur.depth + 1})
			}
		}
	}

	return Result{Visited: len(visited)}, nil
}

func (s *Searcher) directEdge(ctx context.Context, a, b string) (bool, error) {
	fp := Fingerprint(a, b)
	if !s.confirm {
		return s.store.Exists(ctx, fp)
	}

	edge, err := s.store.Get(ctx, fp)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	if !edge.Connects(a, b) {
		s.logger.Warn(ctx, "fingerprint collision ignored", "fingerprint", fp)
		return false, nil
	}
	return true, nil
}

func (s *Searcher) observe(ctx context.Context, res Result, err error) {
	outcome := OutcomeNotFound
	switch {
	case err == nil && res.Found:
		outcome = OutcomeFound
	case errors.Is(err, common.ErrSearchLimitExceeded):
		outcome = OutcomeLimit
		s.logger.Warn(ctx, "search cap exceeded", "visited", res.Visited, "error", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeError
		s.logger.Error(ctx, "search aborted", "visited", res.Visited, "error", err.Error())
	}

	s.logger.Debug(ctx, "search finished", "outcome", outcome, "visited", res.Visited, "hops", res.Hops)
	if s.observer != nil {
		s.observer.ObserveSearch(outcome, res.Visited)
	}
}
