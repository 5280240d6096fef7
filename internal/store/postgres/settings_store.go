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

// SettingsStore implements domain.SettingsStore on the single-row
// app_settings table.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a SettingsStore.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

// Load returns the stored settings, or domain.DefaultSettings when none exist.
func (s *SettingsStore) Load(ctx context.Context) (domain.AppSettings, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM app_settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("postgres: load settings: %w", err)
	}

	settings := domain.DefaultSettings()
	if err := json.Unmarshal(doc, &settings); err != nil {
		return domain.AppSettings{}, fmt.Errorf("postgres: unmarshal settings: %w", err)
	}
	return settings, nil
}

// Save replaces the settings document.
func (s *SettingsStore) Save(ctx context.Context, settings domain.AppSettings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("postgres: marshal settings: %w", err)
	}
	const query = `
		INSERT INTO app_settings (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			document   = EXCLUDED.document,
			updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, doc); err != nil {
		return fmt.Errorf("postgres: save settings: %w", err)
	}
	return nil
}

var _ domain.SettingsStore = (*SettingsStore)(nil)
