package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferenceRepository implements preference.Store on the preferences table.
type PreferenceRepository struct {
	db *pgxpool.Pool
}

// NewPreferenceRepository creates a PreferenceRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the JSON text stored under key.
//
// Postcondition: Returns (value, true, nil) when present, ("", false, nil) when absent.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(ctx,
		`SELECT value::text FROM preferences WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying preference: %w", err)
	}
	return value, true, nil
}

// Set upserts value under key.
//
// Precondition: value must be valid JSON text.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO preferences (key, value, updated_at)
		 VALUES ($1, $2::text::jsonb, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upserting preference: %w", err)
	}
	return nil
}
