package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/notesauth/internal/proto"
	"github.com/dmitrijs2005/notesauth/internal/server/auth"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// field returns a string field of req, or "" when absent or not a string.
func field(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func (s *GRPCServer) CompleteFederatedLogin(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	a := models.Assertion{
		Provider:   field(req, pb.FieldProvider),
		ExternalID: field(req, pb.FieldExternalID),
		Email:      field(req, pb.FieldEmail),
		RawName:    field(req, pb.FieldName),
		Login:      field(req, pb.FieldLogin),
	}

	sessionCtx, res, err := s.federated.OnLoginSuccess(ctx, a)
	if err != nil {
		return nil, s.toStatus(ctx, "federated login", err)
	}

	if p, ok := auth.PrincipalFromContext(sessionCtx); ok {
		s.logger.Info(sessionCtx, "federated session established",
			"user_id", p.Subject, "provider", a.Provider, "authorities", p.Authorities)
	}

	return wrapperspb.String(res.RedirectURL), nil
}

func (s *GRPCServer) LoginWithPassword(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	token, err := s.passwords.Login(ctx, field(req, pb.FieldUsername), field(req, pb.FieldPassword))
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}
	return wrapperspb.String(token), nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.passwords.RequestPasswordReset(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, "password reset request", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	err := s.passwords.ResetPassword(ctx, field(req, pb.FieldToken), field(req, pb.FieldNewPassword))
	if err != nil {
		return nil, s.toStatus(ctx, "password reset", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RunCombinedCleanup(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return s.runCleanup(ctx, "combined cleanup", s.cleanup.RunCombinedCleanup)
}

func (s *GRPCServer) RunExpiredOnlyCleanup(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return s.runCleanup(ctx, "expired cleanup", s.cleanup.RunExpiredOnlyCleanup)
}

func (s *GRPCServer) RunUsedOnlyCleanup(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return s.runCleanup(ctx, "used cleanup", s.cleanup.RunUsedOnlyCleanup)
}

func (s *GRPCServer) runCleanup(ctx context.Context, op string, fn func(context.Context) (int64, error)) (*wrapperspb.Int64Value, error) {
	n, err := fn(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, op, err)
	}
	return wrapperspb.Int64(n), nil
}

func (s *GRPCServer) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := s.cleanup.GetStats(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "cleanup stats", err)
	}

	out, err := structpb.NewStruct(map[string]any{
		pb.FieldTotalTokens:   stats.TotalTokens,
		pb.FieldExpiredTokens: stats.ExpiredTokens,
		pb.FieldUsedTokens:    stats.UsedTokens,
		pb.FieldValidTokens:   stats.ValidTokens(),
	})
	if err != nil {
		return nil, s.toStatus(ctx, "cleanup stats", err)
	}
	return out, nil
}
