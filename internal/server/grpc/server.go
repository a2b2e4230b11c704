// Package grpc exposes the gate service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/passgate/internal/api"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/dmitrijs2005/passgate/internal/logging"
	"github.com/dmitrijs2005/passgate/internal/server/services"
	"google.golang.org/grpc"
)

// GateService is the business logic the transport delegates to.
type GateService interface {
	Describe(ctx context.Context, q gate.Request) (gate.Resource, error)
	Verify(ctx context.Context, q gate.Request, clientID string, secret []byte) (*services.VerifyResult, error)
	Content(ctx context.Context, q gate.Request, clientID string, token string) ([]byte, error)
}

type GRPCServer struct {
	api.UnimplementedGateServiceServer
	address string
	gate    GateService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, gs GateService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		gate:    gs,
	}
}

// newServer installs the interceptors and the service on a fresh
// *grpc.Server.
func (s *GRPCServer) newServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.unlockTokenInterceptor))
	srv := grpc.NewServer(opts...)
	api.RegisterGateServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
