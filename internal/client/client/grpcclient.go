package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notesauth/internal/common"
	pb "github.com/dmitrijs2005/notesauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Cleanup kinds accepted by RunCleanup.
const (
	CleanupCombined = "combined"
	CleanupExpired  = "expired"
	CleanupUsed     = "used"
)

// Stats mirrors the server's reset token statistics.
type Stats struct {
	TotalTokens   int64
	ExpiredTokens int64
	UsedTokens    int64
	ValidTokens   int64
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	client pb.CredentialServiceClient
	token  string
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.token != "" {
		ctx = withBearer(ctx, s.token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpoint. Extra dial options are appended after
// the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpoint, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{token: token}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.tokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewCredentialServiceClient(conn)
	return c, nil
}

// Token returns the session token currently attached to calls.
func (s *GRPCClient) Token() string {
	return s.token
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Login signs in with a local password and keeps the returned session token.
func (s *GRPCClient) Login(ctx context.Context, userName string, password []byte) (string, error) {

	req, err := structpb.NewStruct(map[string]any{
		pb.FieldUsername: userName,
		pb.FieldPassword: string(password),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp, err := s.client.LoginWithPassword(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}

	s.token = resp.GetValue()
	return s.token, nil
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.RequestPasswordReset(ctx, wrapperspb.String(email))
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token string, newPassword []byte) error {

	req, err := structpb.NewStruct(map[string]any{
		pb.FieldToken:       token,
		pb.FieldNewPassword: string(newPassword),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, err = s.client.ResetPassword(ctx, req)
	return s.mapError(err)
}

// RunCleanup triggers one cleanup of the given kind and returns the number
// of deleted tokens.
func (s *GRPCClient) RunCleanup(ctx context.Context, kind string) (int64, error) {
	var call func(context.Context, *emptypb.Empty, ...grpc.CallOption) (*wrapperspb.Int64Value, error)

	switch kind {
	case CleanupCombined:
		call = s.client.RunCombinedCleanup
	case CleanupExpired:
		call = s.client.RunExpiredOnlyCleanup
	case CleanupUsed:
		call = s.client.RunUsedOnlyCleanup
	default:
		return 0, fmt.Errorf("%w: unknown cleanup kind %q", ErrInvalidInput, kind)
	}

	resp, err := call(ctx, &emptypb.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Stats(ctx context.Context) (*Stats, error) {
	resp, err := s.client.GetStats(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &Stats{
		TotalTokens:   int64(f[pb.FieldTotalTokens].GetNumberValue()),
		ExpiredTokens: int64(f[pb.FieldExpiredTokens].GetNumberValue()),
		UsedTokens:    int64(f[pb.FieldUsedTokens].GetNumberValue()),
		ValidTokens:   int64(f[pb.FieldValidTokens].GetNumberValue()),
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.Aborted:
		return ErrBusy
	case codes.FailedPrecondition:
		return ErrInvalidLink
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
