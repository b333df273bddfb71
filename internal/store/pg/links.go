package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clientlinkhq/clientlink/internal/store/core"
)

const pgUniqueViolation = "23505"

func mapPgErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return core.ErrConflict
	}
	return err
}

func (s *Store) CreateLink(ctx context.Context, l *core.OnboardingLink) error {
	const q = `
		INSERT INTO onboarding_links
			(id, token, created_by, platforms, note, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q,
		l.ID, l.Token, l.CreatedBy, l.Platforms, l.Note, l.Status, l.ExpiresAt,
	).Scan(&l.CreatedAt)
	return mapPgErr(err)
}

func (s *Store) GetLinkByToken(ctx context.Context, token string) (*core.OnboardingLink, error) {
	const q = `
		SELECT id, token, created_by, platforms, note, status,
		       expires_at, used_by, used_at, created_at
		FROM onboarding_links
		WHERE token = $1`
	var l core.OnboardingLink
	err := s.pool.QueryRow(ctx, q, token).Scan(
		&l.ID, &l.Token, &l.CreatedBy, &l.Platforms, &l.Note, &l.Status,
		&l.ExpiresAt, &l.UsedBy, &l.UsedAt, &l.CreatedAt,
	)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &l, nil
}

func (s *Store) ListLinks(ctx context.Context, limit, offset int) ([]core.OnboardingLink, error) {
	const q = `
		SELECT id, token, created_by, platforms, note, status,
		       expires_at, used_by, used_at, created_at
		FROM onboarding_links
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	var out []core.OnboardingLink
	for rows.Next() {
		var l core.OnboardingLink
		if err := rows.Scan(
			&l.ID, &l.Token, &l.CreatedBy, &l.Platforms, &l.Note, &l.Status,
			&l.ExpiresAt, &l.UsedBy, &l.UsedAt, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) UpdateLinkStatus(ctx context.Context, token string, status core.LinkStatus) error {
	const q = `UPDATE onboarding_links SET status = $2 WHERE token = $1`
	ct, err := s.pool.Exec(ctx, q, token, status)
	if err != nil {
		return mapPgErr(err)
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ClaimLink(ctx context.Context, token, clientID string, at time.Time) error {
	const q = `
		UPDATE onboarding_links
		SET used_by = $2, used_at = $3
		WHERE token = $1 AND (used_by IS NULL OR used_by = $2)`
	ct, err := s.pool.Exec(ctx, q, token, clientID, at)
	if err != nil {
		return mapPgErr(err)
	}
	if ct.RowsAffected() == 0 {
		return core.ErrConflict
	}
	return nil
}

func (s *Store) MarkLinkUsed(ctx context.Context, token, clientID string, usedAt time.Time) error {
	const q = `
		UPDATE onboarding_links
		SET status = $2, used_by = $3, used_at = $4
		WHERE token = $1`
	ct, err := s.pool.Exec(ctx, q, token, core.LinkStatusUsed, clientID, usedAt)
	if err != nil {
		return mapPgErr(err)
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
