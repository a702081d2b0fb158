package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	pb "github.com/dmitrijs2005/notesauth/internal/proto"
	"github.com/dmitrijs2005/notesauth/internal/server/auth"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

// integrationInterceptor guards pb.IntegrationMethods: the caller must send
// the configured integration key. Other methods pass through untouched.
func (s *GRPCServer) integrationInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if !pb.IntegrationMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	key := firstValue(ctx, common.IntegrationKeyHeaderName)
	if len(s.integrationKey) == 0 || key == "" ||
		subtle.ConstantTimeCompare([]byte(key), s.integrationKey) != 1 {
		s.logger.Warn(ctx, "integration call refused", "method", info.FullMethod)
		return nil, status.Error(codes.Unauthenticated, "invalid integration key")
	}

	return handler(ctx, req)
}

// adminInterceptor guards pb.AdminMethods: the caller needs a bearer session
// token carrying ROLE_ADMIN. Other methods pass through untouched.
func (s *GRPCServer) adminInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if !pb.AdminMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	principal := auth.PrincipalFromClaims(claims)
	if !principal.HasAuthority(string(models.RoleAdmin)) {
		s.logger.Warn(ctx, "admin call refused", "method", info.FullMethod, "user_id", principal.Subject)
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	return handler(auth.ContextWithPrincipal(ctx, principal), req)
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func bearerToken(ctx context.Context) string {
	v := firstValue(ctx, common.AuthorizationHeaderName)
	if len(v) < len(common.BearerPrefix) || !strings.EqualFold(v[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(common.BearerPrefix):])
}
