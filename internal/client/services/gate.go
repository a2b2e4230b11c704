// Package services contains application services for the passgate reader.
// AccessGate is the client half of the gate: it asks the server to check a
// candidate secret and, on ALLOW, records the unlock locally so the
// resource opens without a prompt next time.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/models"
	"github.com/dmitrijs2005/passgate/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/passgate/internal/client/repositories/unlocks"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/dbx"
	"github.com/dmitrijs2005/passgate/internal/gate"
	"github.com/google/uuid"
)

const clientIDKey = "client_id"

// AccessGate defines the reader-side gate operations.
//
// Contract:
//   - Unlocked: the local record that opens a request without asking the
//     server: the article's own record, or the category's for a
//     category-only request.
//   - RecordFor: the local record for a governing resource.
//   - Describe: which resource governs a request, asked of the server.
//   - Verify: server-side check; on ALLOW the record is upserted.
//   - Read: article body, presenting stored unlock tokens.
//   - List / Forget / ForgetAll: local record housekeeping.
//
// All methods honor context cancellation.
type AccessGate interface {
	Ping(ctx context.Context) error
	ClientID(ctx context.Context) (string, error)
	Unlocked(ctx context.Context, q gate.Request) (*models.UnlockRecord, error)
	RecordFor(ctx context.Context, ref gate.Ref) (*models.UnlockRecord, error)
	Describe(ctx context.Context, q gate.Request) (*client.Description, error)
	Verify(ctx context.Context, q gate.Request, secret []byte) (*client.VerifyOutcome, error)
	Read(ctx context.Context, q gate.Request) ([]byte, error)
	List(ctx context.Context) ([]models.UnlockRecord, error)
	Forget(ctx context.Context, key string) error
	ForgetAll(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

type accessGate struct {
	client   client.Client
	db       *sql.DB
	clientID string
	now      func() time.Time
}

func NewAccessGate(c client.Client, db *sql.DB) AccessGate {
	return &accessGate{client: c, db: db, now: time.Now}
}

func (s *accessGate) unlocks(db dbx.DBTX) unlocks.Repository {
	return unlocks.NewSQLiteRepository(db)
}

func (s *accessGate) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *accessGate) Close(ctx context.Context) error {
	return s.client.Close()
}

// ClientID returns this install's identifier, creating it on first use.
func (s *accessGate) ClientID(ctx context.Context) (string, error) {
	if s.clientID != "" {
		return s.clientID, nil
	}

	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		v, err := repo.Get(ctx, clientIDKey)
		if err != nil {
			return err
		}
		if len(v) > 0 {
			id = string(v)
			return nil
		}
		id = uuid.NewString()
		return repo.Set(ctx, clientIDKey, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("client id: %w", err)
	}

	s.clientID = id
	return id, nil
}

// Unlocked never consults the category record for a request naming an
// article: the article may carry its own secret, which only the server
// knows about.
func (s *accessGate) Unlocked(ctx context.Context, q gate.Request) (*models.UnlockRecord, error) {
	if q.Article != "" {
		return s.RecordFor(ctx, gate.ArticleRef(q.Article))
	}
	if q.Category != "" {
		return s.RecordFor(ctx, gate.CategoryRef(q.Category))
	}
	return nil, nil
}

// RecordFor returns nil when ref has no unlocked record.
func (s *accessGate) RecordFor(ctx context.Context, ref gate.Ref) (*models.UnlockRecord, error) {
	rec, err := s.unlocks(s.db).Get(ctx, ref.Key())
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !rec.Unlocked {
		return nil, nil
	}
	return rec, nil
}

func (s *accessGate) Describe(ctx context.Context, q gate.Request) (*client.Description, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.client.Describe(ctx, q)
}

// Verify sends secret to the server and wipes it afterwards. Only an ALLOW
// writes to local storage.
func (s *accessGate) Verify(ctx context.Context, q gate.Request, secret []byte) (*client.VerifyOutcome, error) {
	defer common.WipeByteArray(secret)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	id, err := s.ClientID(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.client.Verify(ctx, q, id, secret)
	if err != nil {
		return nil, err
	}
	if !out.Allowed {
		return out, nil
	}

	if err := out.Ref.Validate(); err != nil {
		return nil, fmt.Errorf("server answered with %w", err)
	}

	rec := &models.UnlockRecord{
		ResourceKey: out.Ref.Key(),
		Unlocked:    true,
		Token:       out.UnlockToken,
		UnlockedAt:  s.now().UTC(),
	}
	if err := s.unlocks(s.db).Save(ctx, rec); err != nil {
		return nil, err
	}

	return out, nil
}

// Read fetches the article body, presenting the token recorded for the
// resource that governs it. When the server rejects that token, only its
// record is removed.
func (s *accessGate) Read(ctx context.Context, q gate.Request) ([]byte, error) {
	if q.Article == "" {
		return nil, fmt.Errorf("%w: article required", common.ErrorInvalidRequest)
	}

	id, err := s.ClientID(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.Describe(ctx, q)
	if err != nil {
		return nil, err
	}
	if !d.Available {
		return nil, client.ErrUnavailable
	}

	var rec *models.UnlockRecord
	if d.Protected {
		if rec, err = s.RecordFor(ctx, d.Ref); err != nil {
			return nil, err
		}
	}

	token := ""
	if rec != nil {
		token = rec.Token
	}

	body, err := s.client.GetArticle(ctx, q, id, token)
	if errors.Is(err, client.ErrUnauthorized) && rec != nil && rec.ResourceKey == d.Ref.Key() {
		if derr := s.unlocks(s.db).Delete(ctx, rec.ResourceKey); derr != nil {
			return nil, derr
		}
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *accessGate) List(ctx context.Context) ([]models.UnlockRecord, error) {
	return s.unlocks(s.db).List(ctx)
}

func (s *accessGate) Forget(ctx context.Context, key string) error {
	if _, err := s.unlocks(s.db).Get(ctx, key); err != nil {
		return err
	}
	return s.unlocks(s.db).Delete(ctx, key)
}

func (s *accessGate) ForgetAll(ctx context.Context) (int64, error) {
	return s.unlocks(s.db).Clear(ctx)
}
