package pg

import (
	"context"

	"github.com/clientlinkhq/clientlink/internal/store/core"
)

func (s *Store) CreateClient(ctx context.Context, c *core.Client) error {
	const q = `
		INSERT INTO clients (id, name, email, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, c.ID, c.Name, c.Email).Scan(&c.CreatedAt)
	return mapPgErr(err)
}

func (s *Store) GetClient(ctx context.Context, id string) (*core.Client, error) {
	const q = `SELECT id, name, email, created_at FROM clients WHERE id = $1`
	var c core.Client
	err := s.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &c, nil
}

func (s *Store) GetClientByEmail(ctx context.Context, email string) (*core.Client, error) {
	const q = `SELECT id, name, email, created_at FROM clients WHERE lower(email) = lower($1)`
	var c core.Client
	err := s.pool.QueryRow(ctx, q, email).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &c, nil
}
