package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return s
}

func TestProfilesLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ps := s.Profiles()

	names, err := ps.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default"}, names)

	p := domain.DefaultProfile("Zeta")
	p.BuyRange = domain.RangeTwoJump
	p.UseSellCustomBroker = true
	require.NoError(t, ps.Save(ctx, p))
	require.NoError(t, ps.Save(ctx, domain.DefaultProfile("Alpha")))

	names, err = ps.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Alpha", "Zeta"}, names)

	got, err := ps.Load(ctx, "Zeta")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "profiles", "Zeta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"buyRange\": 3")

	require.NoError(t, ps.Delete(ctx, "Zeta"))
	require.NoError(t, ps.Delete(ctx, "Zeta"))
	names, err = ps.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Alpha"}, names)
}

func TestDefaultProfileIsBuiltIn(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ps := s.Profiles()

	changed := domain.DefaultProfile(domain.DefaultProfileName)
	changed.Accounting = 0
	require.NoError(t, ps.Save(ctx, changed))

	_, err := os.Stat(filepath.Join(s.Dir(), "profiles", "Default.json"))
	assert.True(t, os.IsNotExist(err))

	got, err := ps.Load(ctx, domain.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), got.Accounting)

	assert.ErrorIs(t, ps.Delete(ctx, domain.DefaultProfileName), domain.ErrDefaultProfile)
}

func TestLoadMissingProfileUsesDefaults(t *testing.T) {
	got, err := newStore(t).Profiles().Load(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfile("Nobody"), got)
}

func TestRejectsPathNames(t *testing.T) {
	ps := newStore(t).Profiles()
	ctx := context.Background()
	assert.ErrorIs(t, ps.Save(ctx, domain.DefaultProfile("../evil")), domain.ErrInvalidProfile)
	_, err := ps.Load(ctx, "../evil")
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.ErrorIs(t, ps.Delete(ctx, "a/b"), domain.ErrInvalidProfile)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ss := s.Settings()

	got, err := ss.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	w := uint32(800)
	want := domain.AppSettings{SelectedProfile: "Alpha", AutoCopyEnabled: true, AutoCopyMode: domain.AutoCopySell95, WindowWidth: &w}
	require.NoError(t, ss.Save(ctx, want))

	got, err = ss.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "settings.json"), []byte(`{"autoCopyEnabled":true}`), 0o644))
	got, err = ss.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Default", got.SelectedProfile)
	assert.Equal(t, domain.AutoCopySell, got.AutoCopyMode)
	assert.True(t, got.AutoCopyEnabled)
}
