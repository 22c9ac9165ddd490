package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/auth"
	"github.com/dmitrijs2005/netwerker/internal/server/blacklist"
	"github.com/dmitrijs2005/netwerker/internal/server/graph"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// failingUsers wraps a repository and fails chosen calls.
type failingUsers struct {
	users.Repository
	findErr   error
	createErr error
	updateErr error
	listErr   error
}

func (f *failingUsers) Find(ctx context.Context, flt users.Filter) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.Repository.Find(ctx, flt)
}

func (f *failingUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Repository.Create(ctx, u)
}

func (f *failingUsers) Update(ctx context.Context, id string, p users.Patch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Repository.Update(ctx, id, p)
}

func (f *failingUsers) List(ctx context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repository.List(ctx)
}

type fixture struct {
	store   *memory.Store
	issuer  *auth.TokenIssuer
	users   *UserService
	friends *FriendService
}

func newFixture(t *testing.T, repo users.Repository) *fixture {
	t.Helper()
	store := memory.NewStore()
	if repo == nil {
		repo = store
	}
	bl, err := blacklist.New("mailinator.com")
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer([]byte("test-secret"), 0, 0)
	pw := auth.NewPasswordAuthenticator(repo, nil)
	tok := auth.NewTokenAuthenticator(issuer, repo)

	us := NewUserService(repo, bl, issuer, pw, tok, logging.Nop{})
	us.SetHashCost(bcrypt.MinCost)

	fs := NewFriendService(repo, store, graph.NewSearcher(store), logging.Nop{})
	return &fixture{store: store, issuer: issuer, users: us, friends: fs}
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterRequest{
		Name: name, Email: name + "@example.com", Password: "password", Org: "acme",
	})
	require.NoError(t, err)
	return u
}
