package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// NetwerkerServer is the server API of the netwerker.v1.Netwerker service.
type NetwerkerServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*UserListResponse, error)
	GetUser(context.Context, *GetUserRequest) (*UserResponse, error)
	PatchUser(context.Context, *PatchUserRequest) (*UserResponse, error)
	ListFriends(context.Context, *ListFriendsRequest) (*UserListResponse, error)
	AddFriend(context.Context, *AddFriendRequest) (*AddFriendResponse, error)
	Distance(context.Context, *DistanceRequest) (*DistanceResponse, error)
}

func unary[Req, Resp any](name string, call func(NetwerkerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(NetwerkerServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes netwerker.v1.Netwerker for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NetwerkerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", NetwerkerServer.Login),
		unary("Refresh", NetwerkerServer.Refresh),
		unary("Register", NetwerkerServer.Register),
		unary("ListUsers", NetwerkerServer.ListUsers),
		unary("GetUser", NetwerkerServer.GetUser),
		unary("PatchUser", NetwerkerServer.PatchUser),
		unary("ListFriends", NetwerkerServer.ListFriends),
		unary("AddFriend", NetwerkerServer.AddFriend),
		unary("Distance", NetwerkerServer.Distance),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "netwerker/v1",
}

// Client is a typed client for netwerker.v1.Netwerker using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, "Login", in, opts)
}

func (c *Client) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c, "Refresh", in, opts)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "Register", in, opts)
}

func (c *Client) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*UserListResponse, error) {
	return invoke[UserListResponse](ctx, c, "ListUsers", in, opts)
}

func (c *Client) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "GetUser", in, opts)
}

func (c *Client) PatchUser(ctx context.Context, in *PatchUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "PatchUser", in, opts)
}

func (c *Client) ListFriends(ctx context.Context, in *ListFriendsRequest, opts ...grpc.CallOption) (*UserListResponse, error) {
	return invoke[UserListResponse](ctx, c, "ListFriends", in, opts)
}

func (c *Client) AddFriend(ctx context.Context, in *AddFriendRequest, opts ...grpc.CallOption) (*AddFriendResponse, error) {
	return invoke[AddFriendResponse](ctx, c, "AddFriend", in, opts)
}

func (c *Client) Distance(ctx context.Context, in *DistanceRequest, opts ...grpc.CallOption) (*DistanceResponse, error) {
	return invoke[DistanceResponse](ctx, c, "Distance", in, opts)
}
