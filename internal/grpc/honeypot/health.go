package honeypot

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"honeypot-lab/pkg/logger"
)

// ServiceName is the name reported to gRPC health clients alongside the server-wide "" entry
const ServiceName = "honeypot.v1.HoneypotService"

// DefaultCheckInterval is how often dependency checks refresh the serving status
const DefaultCheckInterval = 10 * time.Second

// Check tests one dependency; a nil error means healthy
type Check func(ctx context.Context) error

// HealthServer publishes the aggregate state of the configured checks over the standard health protocol
type HealthServer struct {
	server   *health.Server
	checks   map[string]Check
	interval time.Duration
	logger   *logger.Logger
}

// NewHealthServer creates a health server that starts SERVING
func NewHealthServer(checks map[string]Check, interval time.Duration, log *logger.Logger) *HealthServer {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	hs := &HealthServer{
		server:   health.NewServer(),
		checks:   checks,
		interval: interval,
		logger:   log.WithComponent("grpc-health"),
	}
	hs.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return hs
}

// Register registers the health service with a gRPC server
func (hs *HealthServer) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, hs.server)
}

// Run refreshes the serving status until ctx is cancelled, then reports NOT_SERVING
func (hs *HealthServer) Run(ctx context.Context) {
	ticker := time.NewTicker(hs.interval)
	defer ticker.Stop()

	hs.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			hs.server.Shutdown()
			return
		case <-ticker.C:
			hs.Refresh(ctx)
		}
	}
}

// Refresh runs every check once and updates the serving status
func (hs *HealthServer) Refresh(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for name, check := range hs.checks {
		checkCtx, cancel := context.WithTimeout(ctx, hs.interval/2)
		err := check(checkCtx)
		cancel()

		if err != nil {
			hs.logger.Warn().Err(err).Str("check", name).Msg("dependency unhealthy")
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	hs.setStatus(status)
}

func (hs *HealthServer) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	hs.server.SetServingStatus("", status)
	hs.server.SetServingStatus(ServiceName, status)
}
