package main

import (
	"context"
	"fmt"
	"net"
	"time"

	pb "market-dashboard/src/grpc_control"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/server"
	"market-dashboard/src/utils"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

type servers struct {
	http   interfaces.IDataExchanger
	grpc   *grpc.Server
	logger *logger.Logger
}

// startServers orchestrates the startup of all server components
func startServers(app *App, config *models.MConfig, appLogger *logger.Logger) *servers {
	out := &servers{logger: appLogger}

	// 1. Dashboard HTTP/WebSocket server
	srv := server.NewDashboardServer(config, app.Store, app.Registry, logger.NewLogger(config, "DashboardServer"))
	out.http = srv
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	port := config.GrpcPort
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", config.GrpcHost, port))
	if err != nil {
		appLogger.Critical("failed to listen for gRPC: %v", err)
		return out
	}
	out.grpc = grpc.NewServer()
	controlService := pb.NewControlService(app.Store, utils.APITimeout*utils.RetryAttempts+5*time.Second, logger.NewLogger(config, "ControlService"))
	pb.RegisterPollingControlServer(out.grpc, controlService)

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
		if err := out.grpc.Serve(lis); err != nil {
			appLogger.Critical("failed to serve gRPC: %v", err)
		}
	}()
	return out
}

// Stop drains the gRPC server then the dashboard server
func (s *servers) Stop(ctx context.Context) {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if err := s.http.Stop(ctx); err != nil {
		s.logger.Warning("Dashboard server shutdown: %v", err)
	}
}
