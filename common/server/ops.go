// Package server runs the ops gRPC endpoint (health and reflection) shared by
// every service.
package server

import (
	"fmt"
	"net"

	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type OpsServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	service    string
	logger     *logger.Logger
}

func NewOpsServer(serviceName string, log *logger.Logger) *OpsServer {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(utils.LoggingInterceptor(log)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &OpsServer{
		grpcServer: grpcServer,
		health:     healthServer,
		service:    serviceName,
		logger:     log.With("component", "ops-grpc"),
	}
}

// Listen binds the port and serves in the background. Port 0 picks a free port.
func (s *OpsServer) Listen(port int) (net.Addr, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %d: %w", port, err)
	}

	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			s.logger.Error("gRPC server stopped", "error", err)
		}
	}()

	s.logger.Info("gRPC ops server listening", "addr", lis.Addr().String())
	return lis.Addr(), nil
}

func (s *OpsServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(s.service, status)
	s.health.SetServingStatus("", status)
}

func (s *OpsServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
