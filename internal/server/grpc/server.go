// Package grpc exposes the user and friendship services as the
// netwerker.v1.Netwerker gRPC service. Messages are JSON encoded.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/auth"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	users    userSvc
	friends  friendSvc
	tokens   auth.Authenticator
	observer RPCObserver
	logger   logging.Logger
}

// NewGRPCServer builds the server. tokens authenticates every method but
// Login, Refresh and Register. observer may be nil.
func NewGRPCServer(a string, l logging.Logger, us userSvc, fs friendSvc, tokens auth.Authenticator, observer RPCObserver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		friends:  fs,
		tokens:   tokens,
		observer: observer,
	}
}

// NewServer returns a grpc.Server with the service and interceptors
// registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
