package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passgate/internal/api"
	"github.com/dmitrijs2005/passgate/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const unlockTokenKey ctxKey = "unlockToken"

// unlockTokenInterceptor copies the unlock_token metadata entry of
// GetArticle calls into the context. Whether a token is required depends
// on the article, so validation is left to the service.
func (s *GRPCServer) unlockTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod == api.GetArticleMethod {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(common.UnlockTokenHeaderName); len(values) > 0 {
				ctx = context.WithValue(ctx, unlockTokenKey, values[0])
			}
		}
	}

	return handler(ctx, req)
}

func unlockTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(unlockTokenKey).(string)
	return token
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod,
		"code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
