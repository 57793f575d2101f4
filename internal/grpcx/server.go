// Package grpcx runs the standard gRPC health service next to each
// service's HTTP API, so orchestrators can probe either transport.
package grpcx

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/aitooling/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const stopGracePeriod = 2 * time.Second

type HealthServer struct {
	address string
	service string
	health  *health.Server
	logger  logging.Logger
}

// NewHealthServer reports status for service (and for the empty service
// name, which means the whole server).
func NewHealthServer(address, service string, l logging.Logger) *HealthServer {
	return &HealthServer{
		address: address,
		service: service,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

// SetServing flips the reported status, e.g. when the database goes away.
func (s *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.service, st)
}

func (s *HealthServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingUnaryInterceptor),
		grpc.ChainStreamInterceptor(s.loggingStreamInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	s.SetServing(true)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()

		// Watch streams never finish on their own
		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(stopGracePeriod):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
