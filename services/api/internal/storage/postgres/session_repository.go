package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s domain.WizardSession) error {
	draft, err := encodeDraft(s.Draft)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO wizard_sessions (id, user_id, mode, kind, status, current_step, draft, last_venue_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.exec(ctx, stmt,
		s.ID, s.UserID, s.Mode, s.Kind, s.Status, s.CurrentStep, draft, s.LastVenueID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("create wizard session %s: %w", s.ID, domain.ErrWizardExists)
		}
		return fmt.Errorf("create wizard session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (domain.WizardSession, error) {
	const query = `
SELECT id, user_id, mode, kind, status, current_step, draft, last_venue_id, created_at, updated_at
FROM wizard_sessions
WHERE id = $1`
	var (
		s     domain.WizardSession
		draft []byte
	)
	err := r.queryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Mode, &s.Kind, &s.Status, &s.CurrentStep, &draft, &s.LastVenueID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.WizardSession{}, domain.ErrWizardNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WizardSession{}, domain.ErrWizardNotFound
		}
		return domain.WizardSession{}, fmt.Errorf("get wizard session: %w", err)
	}
	if len(draft) > 0 {
		var offer domain.Offer
		if err := json.Unmarshal(draft, &offer); err != nil {
			return domain.WizardSession{}, fmt.Errorf("decode draft of %s: %w", id, err)
		}
		s.Draft = &offer
	}
	return s, nil
}

// UpdateSession stores a newer snapshot. A snapshot older than the stored
// one, written late by another instance, is dropped.
func (r *SessionRepository) UpdateSession(ctx context.Context, s domain.WizardSession) error {
	draft, err := encodeDraft(s.Draft)
	if err != nil {
		return err
	}
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const lockQuery = `SELECT updated_at FROM wizard_sessions WHERE id = $1 FOR UPDATE`
		var stored time.Time
		if err := r.queryRow(txCtx, lockQuery, s.ID).Scan(&stored); err != nil {
			if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrWizardNotFound
			}
			return fmt.Errorf("lock wizard session: %w", err)
		}
		if s.UpdatedAt.Before(stored) {
			return nil
		}

		const stmt = `
UPDATE wizard_sessions
SET mode = $2, kind = $3, status = $4, current_step = $5, draft = $6, last_venue_id = $7, updated_at = $8
WHERE id = $1`
		if _, err := r.exec(txCtx, stmt,
			s.ID, s.Mode, s.Kind, s.Status, s.CurrentStep, draft, s.LastVenueID, s.UpdatedAt); err != nil {
			return fmt.Errorf("update wizard session: %w", err)
		}
		return nil
	})
}

func encodeDraft(o *domain.Offer) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return data, nil
}

func (r *SessionRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SessionRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
