package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/passgate/internal/api"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Describe(ctx context.Context, req *api.DescribeRequest) (*api.DescribeResponse, error) {
	q := gate.Request{Category: req.Category, Article: req.Article}

	res, err := s.gate.Describe(ctx, q)
	if err != nil {
		if errors.Is(err, common.ErrorConfigUnavailable) {
			return &api.DescribeResponse{Available: false}, nil
		}
		return nil, s.toStatus(ctx, err)
	}

	return &api.DescribeResponse{
		Protected: res.Gated(),
		Available: true,
		Kind:      string(res.Ref.Kind),
		ID:        res.Ref.ID,
	}, nil
}

func (s *GRPCServer) Verify(ctx context.Context, req *api.VerifyRequest) (*api.VerifyResponse, error) {
	q := gate.Request{Category: req.Category, Article: req.Article}

	result, err := s.gate.Verify(ctx, q, req.ClientID, req.Secret)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.VerifyResponse{
		Allowed:     result.Decision.Allowed,
		Reason:      string(result.Decision.Reason),
		Kind:        string(result.Ref.Kind),
		ID:          result.Ref.ID,
		UnlockToken: result.UnlockToken,
	}, nil
}

func (s *GRPCServer) GetArticle(ctx context.Context, req *api.GetArticleRequest) (*api.GetArticleResponse, error) {
	q := gate.Request{Category: req.Category, Article: req.Article}

	body, err := s.gate.Content(ctx, q, req.ClientID, unlockTokenFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.GetArticleResponse{Body: body}, nil
}

// toStatus maps service errors to gRPC status codes. Unexpected errors
// are logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotGated):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorConfigUnavailable):
		return status.Error(codes.Unavailable, "resource configuration unavailable")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
