package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Key is a stored API key. KeyHash is the SHA-256 hex digest of the full key;
// the key itself is never persisted.
type Key struct {
	ID        uuid.UUID
	Name      string
	Prefix    string
	KeyHash   string
	CreatedAt time.Time
	RevokedAt *time.Time
}

func (r *Repository) Insert(ctx context.Context, key Key) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, prefix, key_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		key.ID, key.Name, key.Prefix, key.KeyHash, key.CreatedAt,
	)
	return err
}

func (r *Repository) List(ctx context.Context) ([]Key, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, prefix, key_hash, created_at, revoked_at
		 FROM api_keys ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]Key, 0)
	for rows.Next() {
		var key Key
		if err := rows.Scan(&key.ID, &key.Name, &key.Prefix, &key.KeyHash, &key.CreatedAt, &key.RevokedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Revoke marks a key revoked; returns false when the key does not exist or
// was already revoked.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, when time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, when,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
