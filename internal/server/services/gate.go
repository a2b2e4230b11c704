// Package services contains the gate server's business logic.
// GateService resolves which resource guards a request, checks candidate
// secrets, mints unlock tokens and keeps the verification audit.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/dmitrijs2005/passgate/internal/logging"
	"github.com/dmitrijs2005/passgate/internal/server/auth"
	"github.com/dmitrijs2005/passgate/internal/server/config"
	"github.com/dmitrijs2005/passgate/internal/server/content"
	"github.com/dmitrijs2005/passgate/internal/server/models"
	"github.com/dmitrijs2005/passgate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// VerifyResult is the outcome of one verification.
type VerifyResult struct {
	Decision    gate.Decision
	Ref         gate.Ref
	UnlockToken string
}

type GateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *gate.Resolver
	content     content.Loader
	limiter     Limiter
	signingKey  []byte
	tokenTTL    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

// NewGateService wires the service. db may be nil when m keeps its data
// in memory.
func NewGateService(db *sql.DB, m repomanager.RepositoryManager, site gate.SiteConfig, loader content.Loader,
	limiter Limiter, cfg *config.Config, logger logging.Logger) *GateService {
	if limiter == nil {
		limiter = unlimited{}
	}
	return &GateService{
		db:          db,
		repomanager: m,
		resolver:    gate.NewResolver(site, loader),
		content:     loader,
		limiter:     limiter,
		signingKey:  []byte(cfg.TokenSigningKey),
		tokenTTL:    cfg.UnlockTokenTTL,
		logger:      logger.With("module", "gate_service"),
		now:         time.Now,
	}
}

// Describe reports which resource governs q without checking anything.
func (s *GateService) Describe(ctx context.Context, q gate.Request) (gate.Resource, error) {
	res, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.logger.Warn(ctx, "resolve failed", "category", q.Category, "article", q.Article, "error", err)
		return gate.Resource{}, err
	}
	return res, nil
}

// Verify checks secret against the resource governing q. The secret is
// wiped before Verify returns. Ungated requests yield common.ErrorNotGated.
func (s *GateService) Verify(ctx context.Context, q gate.Request, clientID string, secret []byte) (*VerifyResult, error) {
	defer common.WipeByteArray(secret)

	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client id", common.ErrorInvalidRequest)
	}

	res, err := s.Describe(ctx, q)
	if err != nil {
		return nil, err
	}
	if !res.Gated() {
		return nil, common.ErrorNotGated
	}

	result := &VerifyResult{Ref: res.Ref}

	if !s.limiter.Allow(clientID + "|" + res.Ref.Key()) {
		result.Decision = gate.Deny(gate.ReasonRateLimited)
		s.audit(ctx, res.Ref, clientID, result.Decision)
		return result, nil
	}

	decision, err := gate.Check(res, secret)
	if err != nil {
		return nil, err
	}
	result.Decision = decision

	if decision.Allowed {
		token, err := auth.GenerateUnlockToken(clientID, res.Ref.Key(), s.signingKey, s.tokenTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: token: %v", common.ErrorInternal, err)
		}
		result.UnlockToken = token
	}

	s.audit(ctx, res.Ref, clientID, decision)
	return result, nil
}

// audit failures are logged and never change the decision.
func (s *GateService) audit(ctx context.Context, ref gate.Ref, clientID string, d gate.Decision) {
	a := &models.Attempt{
		ID:           uuid.NewString(),
		ResourceKind: string(ref.Kind),
		ResourceID:   ref.ID,
		ClientID:     clientID,
		Allowed:      d.Allowed,
		Reason:       string(d.Reason),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repomanager.Attempts(s.db).Record(ctx, a); err != nil {
		s.logger.Error(ctx, "audit write failed", "resource", ref.String(), "error", err)
		return
	}

	s.logger.Info(ctx, "verification", "resource", ref.String(), "client_id", clientID,
		"allowed", d.Allowed, "reason", string(d.Reason))
}

// Content returns an article body. When the request is gated, token must
// be an unlock token issued to clientID for the governing resource.
func (s *GateService) Content(ctx context.Context, q gate.Request, clientID string, token string) ([]byte, error) {
	if q.Article == "" {
		return nil, fmt.Errorf("%w: article required", common.ErrorInvalidRequest)
	}

	res, err := s.Describe(ctx, q)
	if err != nil {
		return nil, err
	}

	if res.Gated() {
		if token == "" {
			return nil, fmt.Errorf("%w: missing unlock token", common.ErrorUnauthorized)
		}
		claims, err := auth.ParseUnlockToken(token, s.signingKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
		}
		if claims.ResourceKey != res.Ref.Key() {
			return nil, fmt.Errorf("%w: token issued for %s", common.ErrorUnauthorized, claims.ResourceKey)
		}
		if clientID == "" || claims.Subject != clientID {
			return nil, fmt.Errorf("%w: token issued to another client", common.ErrorUnauthorized)
		}
	}

	body, err := s.content.LoadArticleBody(ctx, q.Article)
	if err != nil {
		return nil, fmt.Errorf("load article %q: %w", q.Article, err)
	}
	return body, nil
}
