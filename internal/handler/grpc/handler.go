// Package grpc provides the gRPC transport surface of the server. The only
// service exposed over gRPC is the standard health-checking protocol, used
// by orchestrators and load balancers; all record-store traffic goes over
// HTTP.
package grpc

import (
	"github.com/hostlog/hostlog/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Handler is the root gRPC transport handler. It owns the standard health
// service and registers it on the gRPC server at startup.
//
// A handler instance is created once at startup and shared by the gRPC
// server.
type Handler struct {
	// health implements grpc.health.v1.Health; serving state is flipped by
	// SetServing/SetShutdown.
	health *health.Server

	// logger is used for transport diagnostics.
	logger *logger.Logger
}

// NewHandler constructs a [Handler] with a fresh health service in
// NOT_SERVING state. Call [Handler.SetServing] once the application has
// finished starting up.
func NewHandler(logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &Handler{
		health: h,
		logger: logger,
	}
}

// Register registers all gRPC services owned by this handler onto srv.
func (h *Handler) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.health)
}

// SetServing marks the server healthy for health-check probes.
func (h *Handler) SetServing() {
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

// SetShutdown marks every service NOT_SERVING and makes further status
// changes no-ops. Called when graceful shutdown begins so load balancers
// drain traffic before the listener closes.
func (h *Handler) SetShutdown() {
	h.health.Shutdown()
}
