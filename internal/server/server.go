package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/handler"
	"github.com/hostlog/hostlog/internal/logger"
)

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer
}

// NewServer assembles the transport servers enabled in cfg: the HTTP API
// server and, when a gRPC address is configured, the health-check gRPC
// server.
func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	srv := &server{}

	if handlers.HTTP != nil {
		srv.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg)
	}
	if handlers.GRPC != nil {
		srv.gRPCServer = newGRPCServer(handlers.GRPC, cfg)
	}

	if srv.httpServer == nil && srv.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	return srv, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		fmt.Printf("Error running server: %v \n", err)
	}
}

func (s *server) Shutdown() {
	// finish HTTP server
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}

	// finish gRPC server
	if s.gRPCServer != nil {
		s.gRPCServer.Shutdown()
	}
}

func (s *server) run() error {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	// launch all created servers
	if s.httpServer != nil {
		fmt.Println("Launching HTTP server")
		go s.httpServer.RunServer()
	}
	if s.gRPCServer != nil {
		fmt.Println("Launching GRPC server")
		go s.gRPCServer.RunServer()
	}

	<-idleConnectionsClosed
	fmt.Println("server Shutdown gracefully")

	return nil
}
