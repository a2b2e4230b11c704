package client

import (
	"context"

	"github.com/dmitrijs2005/passgate/internal/gate"
)

// Description is the server's view of which resource governs a request.
type Description struct {
	Ref       gate.Ref
	Protected bool
	Available bool
}

// VerifyOutcome is the server's decision on one candidate secret.
type VerifyOutcome struct {
	Ref         gate.Ref
	Allowed     bool
	Reason      gate.Reason
	UnlockToken string
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Describe(ctx context.Context, q gate.Request) (*Description, error)
	Verify(ctx context.Context, q gate.Request, clientID string, secret []byte) (*VerifyOutcome, error)
	GetArticle(ctx context.Context, q gate.Request, clientID string, unlockToken string) ([]byte, error)
}
