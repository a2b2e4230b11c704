package unlocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passgate/internal/client/models"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/dbx"
)

// SQLiteRepository implements Repository over dbx.DBTX (*sql.DB or *sql.Tx).
// Times are stored as unix milliseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, rec *models.UnlockRecord) error {
	query := `
		INSERT INTO unlocks (resource_key, unlocked, token, unlocked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(resource_key) DO UPDATE SET
			unlocked = excluded.unlocked,
			token = excluded.token,
			unlocked_at = excluded.unlocked_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.ResourceKey, rec.Unlocked, rec.Token, rec.UnlockedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save unlock[%s]: %w", rec.ResourceKey, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.UnlockRecord, error) {
	query := `SELECT resource_key, unlocked, token, unlocked_at FROM unlocks WHERE resource_key = ?`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unlock[%s]: %w", key, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.UnlockRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT resource_key, unlocked, token, unlocked_at FROM unlocks ORDER BY resource_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	defer rows.Close()

	var result []models.UnlockRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unlock row: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unlock rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM unlocks WHERE resource_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete unlock[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM unlocks`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear unlocks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear unlocks: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.UnlockRecord, error) {
	var rec models.UnlockRecord
	var unlockedAt int64
	if err := s.Scan(&rec.ResourceKey, &rec.Unlocked, &rec.Token, &unlockedAt); err != nil {
		return nil, err
	}
	rec.UnlockedAt = time.UnixMilli(unlockedAt).UTC()
	return &rec, nil
}
