// Package grpc exposes the credential services over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/notesauth/internal/logging"
	pb "github.com/dmitrijs2005/notesauth/internal/proto"
	"github.com/dmitrijs2005/notesauth/internal/server/auth"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/dmitrijs2005/notesauth/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type FederatedLogin interface {
	OnLoginSuccess(ctx context.Context, a models.Assertion) (context.Context, *services.LoginResult, error)
}

type Passwords interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type Cleanup interface {
	RunCombinedCleanup(ctx context.Context) (int64, error)
	RunExpiredOnlyCleanup(ctx context.Context) (int64, error)
	RunUsedOnlyCleanup(ctx context.Context) (int64, error)
	GetStats(ctx context.Context) (models.CleanupStats, error)
}

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address   string
	federated FederatedLogin
	passwords Passwords
	cleanup   Cleanup
	tokens    TokenParser
	logger    logging.Logger

	integrationKey []byte
}

// NewGRPCServer builds the server. integrationKey is the shared secret the
// identity-provider callback must send; when empty, federated logins are
// refused.
func NewGRPCServer(a string, l logging.Logger, fl FederatedLogin, pw Passwords, cl Cleanup, tp TokenParser, integrationKey string) *GRPCServer {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		federated:      fl,
		passwords:      pw,
		cleanup:        cl,
		tokens:         tp,
		integrationKey: []byte(integrationKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.integrationInterceptor, s.adminInterceptor),
	)

	pb.RegisterCredentialServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	served := make(chan struct{})
	defer close(served)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-served:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
