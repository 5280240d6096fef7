package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/mw?sslmode=disable",
		DSN(ClientConfig{Host: "db", Database: "mw", User: "u", Password: "p"}))
	assert.Equal(t, "postgres://u:p@db:6543/mw?sslmode=require",
		DSN(ClientConfig{Host: "db", Port: 6543, Database: "mw", User: "u", Password: "p", SSLMode: "require"}))
	assert.Equal(t, "postgres://x", DSN(ClientConfig{DSN: "postgres://x", Host: "ignored"}))
}

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_profiles.sql", "002_app_settings.sql"}, names)
}

// testClient connects to MARKETWATCH_TEST_POSTGRES_DSN or skips.
func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("MARKETWATCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MARKETWATCH_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := New(ctx, ClientConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.RunMigrations(ctx))
	require.NoError(t, c.RunMigrations(ctx), "migrations are idempotent")

	_, err = c.Pool().Exec(ctx, `TRUNCATE profiles, app_settings`)
	require.NoError(t, err)
	return c
}

func TestProfileStoreRoundTrip(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	s := NewProfileStore(c.Pool())

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultProfileName}, names)

	p := domain.DefaultProfile("Hauler")
	p.SellRange = domain.RangeRegion
	p.CorpStanding = 4.5
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, s.Save(ctx, domain.DefaultProfile(domain.DefaultProfileName)))

	got, err := s.Load(ctx, "Hauler")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultProfileName, "Hauler"}, names)

	assert.ErrorIs(t, s.Delete(ctx, domain.DefaultProfileName), domain.ErrDefaultProfile)
	require.NoError(t, s.Delete(ctx, "Hauler"))
	require.NoError(t, s.Delete(ctx, "Hauler"))

	got, err = s.Load(ctx, "Hauler")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile("Hauler"), got)
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	s := NewSettingsStore(c.Pool())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	x := int32(-20)
	want := domain.AppSettings{SelectedProfile: "Hauler", AutoCopyEnabled: true, AutoCopyMode: domain.AutoCopyBuy95, WindowX: &x}
	require.NoError(t, s.Save(ctx, want))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
