package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userKey ctxKey = "user"
	orgKey  ctxKey = "org"
)

// publicMethods may be called without a bearer token.
var publicMethods = map[string]bool{
	FullMethod("Login"):    true,
	FullMethod("Refresh"):  true,
	FullMethod("Register"): true,
}

// UserFromContext returns the caller authenticated by the token interceptor.
func UserFromContext(ctx context.Context) (*models.User, string, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil, "", false
	}
	org, _ := ctx.Value(orgKey).(string)
	return u, org, true
}

func authorizationHeader(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(common.AuthorizationHeaderName); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	user, org, err := s.tokens.Authenticate(ctx, authorizationHeader(ctx))
	if err != nil {
		return nil, toStatus(err)
	}

	ctx = context.WithValue(ctx, userKey, user)
	ctx = context.WithValue(ctx, orgKey, org)
	return handler(ctx, req)
}

// RPCObserver receives one call per handled request.
type RPCObserver interface {
	ObserveRPC(method, code string, d time.Duration)
}

func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	if s.observer != nil {
		s.observer.ObserveRPC(info.FullMethod, code.String(), time.Since(start))
	}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "request handled", "method", info.FullMethod)
	case codes.Internal, codes.Unavailable, codes.Unknown:
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "code", code.String(), "error", err)
	default:
		s.logger.Info(ctx, "request rejected", "method", info.FullMethod, "code", code.String())
	}
	return resp, err
}
