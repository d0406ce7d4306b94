// Package health serves the standard grpc.health.v1.Health service so that
// orchestrators can probe the booklib server without touching the REST API.
package health

import (
	"context"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/booklib/internal/logging"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "booklib"

type Server struct {
	address string
	logger  logging.Logger
	health  *grpchealth.Server
}

// NewServer returns a health server that reports NOT_SERVING until
// SetServing is called.
func NewServer(address string, l logging.Logger) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "grpc_health"),
		health:  grpchealth.NewServer(),
	}
	s.SetNotServing()
	return s
}

func (s *Server) SetServing() {
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) SetNotServing() {
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled. Statuses flip to NOT_SERVING
// before the gRPC server stops.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
