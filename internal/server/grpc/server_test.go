package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/auth"
	"github.com/dmitrijs2005/netwerker/internal/server/blacklist"
	"github.com/dmitrijs2005/netwerker/internal/server/graph"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
	"github.com/dmitrijs2005/netwerker/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, nil, nil, &fakeAuth{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, nil, nil, &fakeAuth{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

type harness struct {
	client *Client
	store  *memory.Store
}

func startHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	bl, err := blacklist.New("mailinator.com")
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour, 24*time.Hour)
	tokens := auth.NewTokenAuthenticator(issuer, store)
	us := services.NewUserService(store, bl, issuer, auth.NewPasswordAuthenticator(store, nil), tokens, logging.Nop{})
	us.SetHashCost(bcrypt.MinCost)
	fs := services.NewFriendService(store, store, graph.NewSearcher(store), logging.Nop{})

	srv := NewGRPCServer("bufnet", logging.Nop{}, us, fs, tokens, nil)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return &harness{client: NewClient(conn), store: store}
}

func withAuth(ctx context.Context, header string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, header)
}

func (h *harness) registerAndLogin(t *testing.T, name string) (UserView, context.Context) {
	t.Helper()
	ctx := context.Background()

	reg, err := h.client.Register(ctx, &RegisterRequest{Name: name, Email: name + "@example.com", Password: "password", Org: "acme"})
	require.NoError(t, err)

	login, err := h.client.Login(withAuth(ctx, auth.BasicHeader(name+"@example.com", "password")), &LoginRequest{})
	require.NoError(t, err)
	require.Equal(t, reg.User.UUID, login.User.UUID)

	return reg.User, withAuth(ctx, "Bearer "+login.AccessToken)
}

func TestEndToEnd_FriendsAndDistance(t *testing.T) {
	h := startHarness(t)
	a, actx := h.registerAndLogin(t, "alice")
	b, bctx := h.registerAndLogin(t, "bob")
	c, _ := h.registerAndLogin(t, "carol")

	_, err := h.client.AddFriend(actx, &AddFriendRequest{UUID: a.UUID, FriendUUID: b.UUID})
	require.NoError(t, err)
	_, err = h.client.AddFriend(bctx, &AddFriendRequest{UUID: b.UUID, FriendUUID: c.UUID})
	require.NoError(t, err)

	_, err = h.client.AddFriend(bctx, &AddFriendRequest{UUID: b.UUID, FriendUUID: a.UUID})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	dist, err := h.client.Distance(actx, &DistanceRequest{UUID: a.UUID, OtherUUID: c.UUID})
	require.NoError(t, err)
	assert.True(t, dist.Found)
	assert.Equal(t, 2, dist.Hops)

	friends, err := h.client.ListFriends(actx, &ListFriendsRequest{UUID: b.UUID})
	require.NoError(t, err)
	assert.Equal(t, 2, friends.TotalItems)

	all, err := h.client.ListUsers(actx, &ListUsersRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalItems)

	_, err = h.client.Distance(actx, &DistanceRequest{UUID: a.UUID, OtherUUID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestEndToEnd_AuthErrors(t *testing.T) {
	h := startHarness(t)
	a, actx := h.registerAndLogin(t, "alice")
	b, _ := h.registerAndLogin(t, "bob")
	ctx := context.Background()

	_, err := h.client.GetUser(ctx, &GetUserRequest{UUID: a.UUID})
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "no token")

	_, err = h.client.GetUser(withAuth(ctx, "Bearer garbage"), &GetUserRequest{UUID: a.UUID})
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "bad token")

	_, err = h.client.Login(withAuth(ctx, auth.BasicHeader("alice@example.com", "nope")), &LoginRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Login(ctx, &LoginRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.PatchUser(actx, &PatchUserRequest{UUID: b.UUID, Email: "x@example.com"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "cannot patch someone else")

	_, err = h.client.AddFriend(actx, &AddFriendRequest{UUID: b.UUID, FriendUUID: a.UUID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestEndToEnd_RegisterAndPatch(t *testing.T) {
	h := startHarness(t)
	a, actx := h.registerAndLogin(t, "alice")
	ctx := context.Background()

	_, err := h.client.Register(ctx, &RegisterRequest{Name: "x", Email: "x@mailinator.com", Password: "password"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.Register(ctx, &RegisterRequest{Name: "a2", Email: "ALICE@example.com", Password: "password"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	patched, err := h.client.PatchUser(actx, &PatchUserRequest{UUID: a.UUID, Email: "alice@new.example"})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example", patched.User.Email)

	got, err := h.client.GetUser(actx, &GetUserRequest{UUID: a.UUID})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example", got.User.Email)
}

func TestEndToEnd_AdminMayActForOthers(t *testing.T) {
	h := startHarness(t)
	_, _ = h.registerAndLogin(t, "alice")
	b, _ := h.registerAndLogin(t, "bob")
	ctx := context.Background()

	hash, err := auth.HashPassword("rootpw", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = h.store.Create(ctx, &models.User{UUID: "root-uuid", Name: "root", Email: "root@example.com", PasswordHash: hash, Roles: []string{AdminRole}})
	require.NoError(t, err)

	login, err := h.client.Login(withAuth(ctx, auth.BasicHeader("root@example.com", "rootpw")), &LoginRequest{})
	require.NoError(t, err)
	rctx := withAuth(ctx, "Bearer "+login.AccessToken)

	_, err = h.client.PatchUser(rctx, &PatchUserRequest{UUID: b.UUID, Email: "bob@new.example"})
	require.NoError(t, err)

	u, err := h.store.Find(ctx, users.ByUUID(b.UUID))
	require.NoError(t, err)
	assert.Equal(t, "bob@new.example", u.Email)
}

func TestEndToEnd_Refresh(t *testing.T) {
	h := startHarness(t)
	a, _ := h.registerAndLogin(t, "alice")
	ctx := context.Background()

	login, err := h.client.Login(withAuth(ctx, auth.BasicHeader("alice@example.com", "password")), &LoginRequest{})
	require.NoError(t, err)

	refreshed, err := h.client.Refresh(ctx, &RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, refreshed.RefreshToken)

	got, err := h.client.GetUser(withAuth(ctx, "Bearer "+refreshed.AccessToken), &GetUserRequest{UUID: a.UUID})
	require.NoError(t, err)
	assert.Equal(t, a.UUID, got.User.UUID)

	_, err = h.client.GetUser(withAuth(ctx, "Bearer "+login.RefreshToken), &GetUserRequest{UUID: a.UUID})
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "refresh token is not an access token")
}
