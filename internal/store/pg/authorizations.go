package pg

import (
	"context"
	"encoding/json"

	"github.com/clientlinkhq/clientlink/internal/store/core"
)

// UpsertAuthorization inserts or replaces the grant for a
// (client_id, platform) pair. Last write wins on conflict.
func (s *Store) UpsertAuthorization(ctx context.Context, a *core.Authorization) error {
	td, err := json.Marshal(a.TokenData)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO authorizations
			(id, client_id, platform, status, scopes, token_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (client_id, platform) DO UPDATE SET
			status     = EXCLUDED.status,
			scopes     = EXCLUDED.scopes,
			token_data = EXCLUDED.token_data,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err = s.pool.QueryRow(ctx, q,
		a.ID, a.ClientID, a.Platform, a.Status, a.Scopes, td,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapPgErr(err)
}

func (s *Store) GetAuthorization(ctx context.Context, clientID, platform string) (*core.Authorization, error) {
	const q = `
		SELECT id, client_id, platform, status, scopes, token_data, created_at, updated_at
		FROM authorizations
		WHERE client_id = $1 AND platform = $2`
	a, err := scanAuthorization(s.pool.QueryRow(ctx, q, clientID, platform))
	if err != nil {
		return nil, mapPgErr(err)
	}
	return a, nil
}

func (s *Store) ListAuthorizationsByClient(ctx context.Context, clientID string) ([]core.Authorization, error) {
	const q = `
		SELECT id, client_id, platform, status, scopes, token_data, created_at, updated_at
		FROM authorizations
		WHERE client_id = $1
		ORDER BY platform`
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	var out []core.Authorization
	for rows.Next() {
		a, err := scanAuthorization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthorization(row rowScanner) (*core.Authorization, error) {
	var (
		a  core.Authorization
		td []byte
	)
	if err := row.Scan(
		&a.ID, &a.ClientID, &a.Platform, &a.Status, &a.Scopes, &td,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(td) > 0 {
		if err := json.Unmarshal(td, &a.TokenData); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
