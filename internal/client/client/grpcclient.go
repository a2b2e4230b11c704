package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passgate/internal/api"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      api.GateServiceClient
}

func withUnlockToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.UnlockTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// NewGateClient dials endpointURL lazily. A positive timeout bounds every
// call.
func NewGateClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewGateServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Describe(ctx context.Context, q gate.Request) (*Description, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Describe(ctx, &api.DescribeRequest{Category: q.Category, Article: q.Article})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &Description{
		Ref:       gate.Ref{Kind: gate.Kind(resp.Kind), ID: resp.ID},
		Protected: resp.Protected,
		Available: resp.Available,
	}, nil
}

func (s *GRPCClient) Verify(ctx context.Context, q gate.Request, clientID string, secret []byte) (*VerifyOutcome, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &api.VerifyRequest{Category: q.Category, Article: q.Article, ClientID: clientID, Secret: secret}

	resp, err := s.client.Verify(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &VerifyOutcome{
		Ref:         gate.Ref{Kind: gate.Kind(resp.Kind), ID: resp.ID},
		Allowed:     resp.Allowed,
		Reason:      gate.Reason(resp.Reason),
		UnlockToken: resp.UnlockToken,
	}, nil
}

func (s *GRPCClient) GetArticle(ctx context.Context, q gate.Request, clientID string, unlockToken string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if unlockToken != "" {
		ctx = withUnlockToken(ctx, unlockToken)
	}

	resp, err := s.client.GetArticle(ctx, &api.GetArticleRequest{Category: q.Category, Article: q.Article, ClientID: clientID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Body, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.FailedPrecondition:
		return common.ErrorNotGated
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidRequest, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
