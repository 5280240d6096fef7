package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

func TestMarketServiceKeepsLatest(t *testing.T) {
	ctx := context.Background()
	svc := NewMarketService()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, _, ok := svc.Latest()
	assert.False(t, ok)

	require.NoError(t, svc.PublishSnapshot(ctx, domain.MarketSnapshot{ItemName: "A"}))
	require.NoError(t, svc.PublishSnapshot(ctx, domain.MarketSnapshot{ItemName: "B"}))
	require.NoError(t, svc.PublishStatus(ctx, "Processed: B"))

	snap, at, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, "B", snap.ItemName)
	assert.Equal(t, fixed, at)

	status, _, n := svc.Status()
	assert.Equal(t, "Processed: B", status)
	assert.Equal(t, int64(2), n)
}
