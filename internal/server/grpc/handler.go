package grpc

import (
	"context"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/graph"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AdminRole may act on behalf of any user.
const AdminRole = "admin"

type userSvc interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Get(ctx context.Context, uuid string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	PatchEmail(ctx context.Context, uuid, email string) (*models.User, error)
	Login(ctx context.Context, header string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type friendSvc interface {
	AddFriend(ctx context.Context, uuid, friendUUID string) error
	Friends(ctx context.Context, uuid string) ([]*models.User, error)
	Distance(ctx context.Context, uuid, otherUUID string) (graph.Result, error)
}

// authorizeSelf lets the caller act on uuid only when it is their own or
// they hold the admin role.
func authorizeSelf(ctx context.Context, uuid string) error {
	u, _, ok := UserFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, common.ErrNoCredential.Error())
	}
	if u.UUID != uuid && !u.HasAnyRole(AdminRole) {
		return status.Error(codes.PermissionDenied, common.ErrForbidden.Error())
	}
	return nil
}

func (s *GRPCServer) Login(ctx context.Context, _ *LoginRequest) (*LoginResponse, error) {
	res, err := s.users.Login(ctx, authorizationHeader(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &LoginResponse{
		User:         newUserView(res.User),
		Org:          res.Org,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		ExpiresAt:    res.Tokens.AccessExpires,
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error) {
	pair, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RefreshResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresAt: pair.AccessExpires}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	u, err := s.users.Register(ctx, services.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Org:      req.Org,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &UserResponse{User: newUserView(u)}, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *ListUsersRequest) (*UserListResponse, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return newUserList(us), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *GetUserRequest) (*UserResponse, error) {
	u, err := s.users.Get(ctx, req.UUID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UserResponse{User: newUserView(u)}, nil
}

func (s *GRPCServer) PatchUser(ctx context.Context, req *PatchUserRequest) (*UserResponse, error) {
	if err := authorizeSelf(ctx, req.UUID); err != nil {
		return nil, err
	}
	u, err := s.users.PatchEmail(ctx, req.UUID, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UserResponse{User: newUserView(u)}, nil
}

func (s *GRPCServer) ListFriends(ctx context.Context, req *ListFriendsRequest) (*UserListResponse, error) {
	us, err := s.friends.Friends(ctx, req.UUID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newUserList(us), nil
}

func (s *GRPCServer) AddFriend(ctx context.Context, req *AddFriendRequest) (*AddFriendResponse, error) {
	if req.FriendUUID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing friend uuid")
	}
	if err := authorizeSelf(ctx, req.UUID); err != nil {
		return nil, err
	}
	if err := s.friends.AddFriend(ctx, req.UUID, req.FriendUUID); err != nil {
		return nil, toStatus(err)
	}
	return &AddFriendResponse{}, nil
}

func (s *GRPCServer) Distance(ctx context.Context, req *DistanceRequest) (*DistanceResponse, error) {
	res, err := s.friends.Distance(ctx, req.UUID, req.OtherUUID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DistanceResponse{Found: res.Found, Hops: res.Hops, Visited: res.Visited}, nil
}
