package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/dailyphrase/internal/api/grpc/middleware"
	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
	"github.com/dtroode/dailyphrase/internal/service"
)

// ServiceName is the health service name reporting the dispatch state.
const ServiceName = "dailyphrase.Dispatch"

// HealthChecker reports the state of the latest dispatch run.
type HealthChecker interface {
	Check(ctx context.Context) (service.HealthStatus, error)
}

// Router builds the gRPC server: a public health service and operator-only
// reflection.
type Router struct {
	checker        HealthChecker
	tokens         model.OperatorTokenManager
	contextManager model.ContextManager
	health         *health.Server
	logger         *logger.Logger
}

func New(
	checker HealthChecker,
	tokens model.OperatorTokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		checker:        checker,
		tokens:         tokens,
		contextManager: contextManager,
		health:         health.NewServer(),
		logger:         logger,
	}
}

func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/"+healthpb.Health_ServiceDesc.ServiceName+"/")
}

func (r *Router) recover(p any) error {
	r.logger.Error("gRPC: recovered from panic", "panic", fmt.Sprint(p))
	return status.Error(codes.Internal, "internal server error")
}

func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandler(r.recover)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpt),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)

	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}

// Refresh copies the dispatch health into the gRPC health service.
func (r *Router) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	hs, err := r.checker.Check(ctx)
	switch {
	case err != nil:
		r.logger.Warn("gRPC: health check failed", "error", err.Error())
		st = healthpb.HealthCheckResponse_NOT_SERVING
	case !hs.Serving:
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.health.SetServingStatus(ServiceName, st)
	return st
}

// WatchHealth refreshes the health status every interval until ctx is done.
func (r *Router) WatchHealth(ctx context.Context, interval time.Duration) {
	r.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.health.Shutdown()
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}
