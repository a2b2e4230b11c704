package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "passgate.GateService"

	PingMethod       = "/" + ServiceName + "/Ping"
	DescribeMethod   = "/" + ServiceName + "/Describe"
	VerifyMethod     = "/" + ServiceName + "/Verify"
	GetArticleMethod = "/" + ServiceName + "/GetArticle"
)

// GateServiceServer is implemented by the gate server.
type GateServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Describe(context.Context, *DescribeRequest) (*DescribeResponse, error)
	Verify(context.Context, *VerifyRequest) (*VerifyResponse, error)
	GetArticle(context.Context, *GetArticleRequest) (*GetArticleResponse, error)
}

// UnimplementedGateServiceServer can be embedded to get forward-compatible
// implementations.
type UnimplementedGateServiceServer struct{}

func (UnimplementedGateServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedGateServiceServer) Describe(context.Context, *DescribeRequest) (*DescribeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Describe not implemented")
}

func (UnimplementedGateServiceServer) Verify(context.Context, *VerifyRequest) (*VerifyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verify not implemented")
}

func (UnimplementedGateServiceServer) GetArticle(context.Context, *GetArticleRequest) (*GetArticleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetArticle not implemented")
}

func RegisterGateServiceServer(s grpc.ServiceRegistrar, srv GateServiceServer) {
	s.RegisterService(&gateServiceDesc, srv)
}

var gateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "Describe", Handler: describeHandler},
		{MethodName: "Verify", Handler: verifyHandler},
		{MethodName: "GetArticle", Handler: getArticleHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "passgate/gate.json",
}

// unary adapts a typed method to grpc.MethodDesc's handler signature.
func unary[Req any, Resp any](method string, call func(GateServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GateServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GateServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	pingHandler       = unary(PingMethod, GateServiceServer.Ping)
	describeHandler   = unary(DescribeMethod, GateServiceServer.Describe)
	verifyHandler     = unary(VerifyMethod, GateServiceServer.Verify)
	getArticleHandler = unary(GetArticleMethod, GateServiceServer.GetArticle)
)

// GateServiceClient is the client side of GateServiceServer.
type GateServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Describe(ctx context.Context, in *DescribeRequest, opts ...grpc.CallOption) (*DescribeResponse, error)
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error)
	GetArticle(ctx context.Context, in *GetArticleRequest, opts ...grpc.CallOption) (*GetArticleResponse, error)
}

type gateServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGateServiceClient(cc grpc.ClientConnInterface) GateServiceClient {
	return &gateServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gateServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, PingMethod, in, opts)
}

func (c *gateServiceClient) Describe(ctx context.Context, in *DescribeRequest, opts ...grpc.CallOption) (*DescribeResponse, error) {
	return invoke[DescribeResponse](ctx, c.cc, DescribeMethod, in, opts)
}

func (c *gateServiceClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	return invoke[VerifyResponse](ctx, c.cc, VerifyMethod, in, opts)
}

func (c *gateServiceClient) GetArticle(ctx context.Context, in *GetArticleRequest, opts ...grpc.CallOption) (*GetArticleResponse, error) {
	return invoke[GetArticleResponse](ctx, c.cc, GetArticleMethod, in, opts)
}
