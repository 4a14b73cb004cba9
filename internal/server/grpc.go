package server

import (
	"fmt"
	"net"

	"github.com/hostlog/hostlog/internal/config"
	myGRPC "github.com/hostlog/hostlog/internal/handler/grpc"

	"google.golang.org/grpc"
)

// grpcServer serves the health-checking gRPC endpoint. The handler's
// serving state is flipped to SERVING once the listener is up and to
// NOT_SERVING as soon as graceful shutdown begins.
type grpcServer struct {
	handler *myGRPC.Handler
	address string

	server *grpc.Server
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server) *grpcServer {
	srv := grpc.NewServer()
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		address: cfg.GRPCAddress,
		server:  srv,
	}
}

func (g *grpcServer) RunServer() {
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		fmt.Printf("gRPC server Listen: %v\n", err)
		return
	}

	g.handler.SetServing()

	if err := g.server.Serve(listener); err != nil {
		fmt.Printf("gRPC server Serve: %v\n", err)
	}
}

func (g *grpcServer) Shutdown() {
	g.handler.SetShutdown()
	g.server.GracefulStop()
}
