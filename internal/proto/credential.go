// Package proto holds the wire contract of notesauth.v1.CredentialService.
// Messages are protobuf well-known types, so the service descriptor, server
// interface and client stub are declared here by hand instead of generated.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "notesauth.v1.CredentialService"

const (
	CredentialService_CompleteFederatedLogin_FullMethodName = "/" + ServiceName + "/CompleteFederatedLogin"
	CredentialService_LoginWithPassword_FullMethodName      = "/" + ServiceName + "/LoginWithPassword"
	CredentialService_RequestPasswordReset_FullMethodName   = "/" + ServiceName + "/RequestPasswordReset"
	CredentialService_ResetPassword_FullMethodName          = "/" + ServiceName + "/ResetPassword"
	CredentialService_RunCombinedCleanup_FullMethodName     = "/" + ServiceName + "/RunCombinedCleanup"
	CredentialService_RunExpiredOnlyCleanup_FullMethodName  = "/" + ServiceName + "/RunExpiredOnlyCleanup"
	CredentialService_RunUsedOnlyCleanup_FullMethodName     = "/" + ServiceName + "/RunUsedOnlyCleanup"
	CredentialService_GetStats_FullMethodName               = "/" + ServiceName + "/GetStats"
)

// Request and response field names carried in google.protobuf.Struct.
const (
	FieldProvider    = "provider"
	FieldExternalID  = "external_id"
	FieldEmail       = "email"
	FieldName        = "name"
	FieldLogin       = "login"
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldToken       = "token"
	FieldNewPassword = "new_password"

	FieldTotalTokens   = "totalTokens"
	FieldExpiredTokens = "expiredTokens"
	FieldUsedTokens    = "usedTokens"
	FieldValidTokens   = "validTokens"
)

// CredentialServiceServer is the server API for CredentialService.
type CredentialServiceServer interface {
	CompleteFederatedLogin(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	LoginWithPassword(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	RequestPasswordReset(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ResetPassword(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	RunCombinedCleanup(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	RunExpiredOnlyCleanup(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	RunUsedOnlyCleanup(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterCredentialServiceServer attaches srv to s.
func RegisterCredentialServiceServer(s grpc.ServiceRegistrar, srv CredentialServiceServer) {
	s.RegisterService(&CredentialService_ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(CredentialServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(CredentialServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CredentialService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CredentialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CompleteFederatedLogin", Handler: unary(CredentialService_CompleteFederatedLogin_FullMethodName, CredentialServiceServer.CompleteFederatedLogin)},
		{MethodName: "LoginWithPassword", Handler: unary(CredentialService_LoginWithPassword_FullMethodName, CredentialServiceServer.LoginWithPassword)},
		{MethodName: "RequestPasswordReset", Handler: unary(CredentialService_RequestPasswordReset_FullMethodName, CredentialServiceServer.RequestPasswordReset)},
		{MethodName: "ResetPassword", Handler: unary(CredentialService_ResetPassword_FullMethodName, CredentialServiceServer.ResetPassword)},
		{MethodName: "RunCombinedCleanup", Handler: unary(CredentialService_RunCombinedCleanup_FullMethodName, CredentialServiceServer.RunCombinedCleanup)},
		{MethodName: "RunExpiredOnlyCleanup", Handler: unary(CredentialService_RunExpiredOnlyCleanup_FullMethodName, CredentialServiceServer.RunExpiredOnlyCleanup)},
		{MethodName: "RunUsedOnlyCleanup", Handler: unary(CredentialService_RunUsedOnlyCleanup_FullMethodName, CredentialServiceServer.RunUsedOnlyCleanup)},
		{MethodName: "GetStats", Handler: unary(CredentialService_GetStats_FullMethodName, CredentialServiceServer.GetStats)},
	},
	Streams: []grpc.StreamDesc{},
}

// CredentialServiceClient is the client API for CredentialService.
type CredentialServiceClient interface {
	CompleteFederatedLogin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	LoginWithPassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	RequestPasswordReset(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ResetPassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RunCombinedCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	RunExpiredOnlyCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	RunUsedOnlyCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type credentialServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCredentialServiceClient(cc grpc.ClientConnInterface) CredentialServiceClient {
	return &credentialServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *credentialServiceClient) CompleteFederatedLogin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, CredentialService_CompleteFederatedLogin_FullMethodName, in, opts)
}

func (c *credentialServiceClient) LoginWithPassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, CredentialService_LoginWithPassword_FullMethodName, in, opts)
}

func (c *credentialServiceClient) RequestPasswordReset(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, CredentialService_RequestPasswordReset_FullMethodName, in, opts)
}

func (c *credentialServiceClient) ResetPassword(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, CredentialService_ResetPassword_FullMethodName, in, opts)
}

func (c *credentialServiceClient) RunCombinedCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return invoke[wrapperspb.Int64Value](ctx, c.cc, CredentialService_RunCombinedCleanup_FullMethodName, in, opts)
}

func (c *credentialServiceClient) RunExpiredOnlyCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return invoke[wrapperspb.Int64Value](ctx, c.cc, CredentialService_RunExpiredOnlyCleanup_FullMethodName, in, opts)
}

func (c *credentialServiceClient) RunUsedOnlyCleanup(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	return invoke[wrapperspb.Int64Value](ctx, c.cc, CredentialService_RunUsedOnlyCleanup_FullMethodName, in, opts)
}

func (c *credentialServiceClient) GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, CredentialService_GetStats_FullMethodName, in, opts)
}

// AdminMethods lists the methods that require a ROLE_ADMIN session.
var AdminMethods = map[string]bool{
	CredentialService_RunCombinedCleanup_FullMethodName:    true,
	CredentialService_RunExpiredOnlyCleanup_FullMethodName: true,
	CredentialService_RunUsedOnlyCleanup_FullMethodName:    true,
	CredentialService_GetStats_FullMethodName:              true,
}

// IntegrationMethods lists the methods only the identity-provider callback
// may call. Callers present the shared integration key.
var IntegrationMethods = map[string]bool{
	CredentialService_CompleteFederatedLogin_FullMethodName: true,
}
