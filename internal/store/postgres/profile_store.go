package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// ProfileStore implements domain.ProfileStore on the profiles table. Each
// profile is kept as a JSONB document keyed by its name.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a ProfileStore.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// List returns Default followed by the stored names in alphabetical order.
func (s *ProfileStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM profiles WHERE name <> $1 ORDER BY name`, domain.DefaultProfileName)
	if err != nil {
		return nil, fmt.Errorf("postgres: list profiles: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: list profiles rows: %w", err)
	}
	return append([]string{domain.DefaultProfileName}, names...), nil
}

// Load returns the stored profile or the built-in defaults under name.
func (s *ProfileStore) Load(ctx context.Context, name string) (domain.Profile, error) {
	if name == domain.DefaultProfileName {
		return domain.DefaultProfile(name), nil
	}

	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM profiles WHERE name = $1`, name).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultProfile(name), nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("postgres: load profile %s: %w", name, err)
	}

	var p domain.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("postgres: unmarshal profile %s: %w", name, err)
	}
	p.ProfileName = name
	return p, nil
}

// Save upserts the profile. Default is never stored.
func (s *ProfileStore) Save(ctx context.Context, p domain.Profile) error {
	if p.ProfileName == domain.DefaultProfileName {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("postgres: marshal profile %s: %w", p.ProfileName, err)
	}

	const query = `
		INSERT INTO profiles (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			document   = EXCLUDED.document,
			updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, p.ProfileName, doc); err != nil {
		return fmt.Errorf("postgres: save profile %s: %w", p.ProfileName, err)
	}
	return nil
}

// Delete removes the profile. Missing names are not an error.
func (s *ProfileStore) Delete(ctx context.Context, name string) error {
	if name == domain.DefaultProfileName {
		return domain.ErrDefaultProfile
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE name = $1`, name); err != nil {
		return fmt.Errorf("postgres: delete profile %s: %w", name, err)
	}
	return nil
}

var _ domain.ProfileStore = (*ProfileStore)(nil)
