package marketlog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

const jita = 60003760

func TestCIBounds(t *testing.T) {
	assert.Equal(t, domain.NoPrice, CILower95(nil))
	assert.Equal(t, domain.NoPrice, CIUpper95(nil))
	assert.Equal(t, 42.0, CILower95([]float64{42}))
	assert.Equal(t, 42.0, CIUpper95([]float64{42}))

	prices := []float64{10, 20, 30}
	half := 1.96 * 10 / math.Sqrt(3)
	assert.InDelta(t, 20-half, CILower95(prices), 1e-9)
	assert.InDelta(t, 20+half, CIUpper95(prices), 1e-9)
}

func TestStats(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Zero(t, SampleStdDev([]float64{5}, 5))
	assert.InDelta(t, 1.0, SampleStdDev([]float64{1, 2, 3}, 2), 1e-12)
	assert.Equal(t, domain.NoPrice, Min(nil))
	assert.Equal(t, domain.NoPrice, Max(nil))
	assert.Equal(t, 1.0, Min([]float64{3, 1, 2}))
	assert.Equal(t, 3.0, Max([]float64{3, 1, 2}))
}

func TestAggregateOrders(t *testing.T) {
	orders := []domain.OrderRecord{
		{Price: 5.0, LocationID: jita, Jumps: 0},
		{Price: 4.0, LocationID: 1, Jumps: 0},
		{Price: 3.0, LocationID: 1, Jumps: 1},
		{Price: 2.0, LocationID: 1, Jumps: 5},
		{Price: 1.0, IsBuyOrder: true, LocationID: jita, Jumps: 0},
		{Price: 1.5, IsBuyOrder: true, LocationID: 1, Jumps: 2},
	}

	tests := []struct {
		name              string
		buy, sell         domain.OrderRange
		wantSell, wantBuy float64
		sellN, buyN       int
	}{
		{"hub", domain.RangeHub, domain.RangeHub, 5.0, 1.0, 1, 1},
		{"system", domain.RangeSystem, domain.RangeSystem, 4.0, 1.0, 2, 1},
		{"one jump", domain.RangeOneJump, domain.RangeOneJump, 3.0, 1.0, 3, 1},
		{"two jump", domain.RangeTwoJump, domain.RangeTwoJump, 3.0, 1.5, 3, 2},
		{"region", domain.RangeRegion, domain.RangeRegion, 2.0, 1.5, 4, 2},
		{"independent sides", domain.RangeRegion, domain.RangeHub, 5.0, 1.5, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := AggregateOrders(orders, tt.buy, tt.sell)
			assert.Equal(t, tt.wantSell, agg.SellPrice)
			assert.Equal(t, tt.wantBuy, agg.BuyPrice)
			assert.Equal(t, tt.sellN, agg.SellCount)
			assert.Equal(t, tt.buyN, agg.BuyCount)
		})
	}
}

func TestAggregateOrdersEmptySide(t *testing.T) {
	orders := []domain.OrderRecord{{Price: 9, LocationID: 1, Jumps: 1}}
	agg := AggregateOrders(orders, domain.RangeHub, domain.RangeHub)
	assert.Equal(t, domain.NoPrice, agg.SellPrice)
	assert.Equal(t, domain.NoPrice, agg.BuyPrice)
	assert.Equal(t, domain.NoPrice, agg.SellCILower)
	assert.Equal(t, domain.NoPrice, agg.BuyCIUpper)
	assert.Zero(t, agg.SellCount)

	agg = AggregateOrders(orders, domain.RangeHub, domain.RangeRegion)
	assert.Equal(t, 9.0, agg.SellPrice)
	assert.Equal(t, 9.0, agg.SellCILower)
}

func TestAggregateOrdersOrderIndependentExtremes(t *testing.T) {
	a := []domain.OrderRecord{{Price: 3}, {Price: 1}, {Price: 2}}
	b := []domain.OrderRecord{{Price: 2}, {Price: 3}, {Price: 1}}
	assert.Equal(t,
		AggregateOrders(a, domain.RangeRegion, domain.RangeRegion).SellPrice,
		AggregateOrders(b, domain.RangeRegion, domain.RangeRegion).SellPrice)
}

func TestStatsNearFloatLimit(t *testing.T) {
	huge := []float64{1e308, 1e308}
	assert.Equal(t, 1e308, Mean(huge))
	assert.Zero(t, SampleStdDev(huge, 1e308))
	assert.Equal(t, 1e308, CILower95(huge))
	assert.Equal(t, 1e308, CIUpper95(huge))

	spread := []float64{0, math.MaxFloat64}
	for _, v := range []float64{Mean(spread), SampleStdDev(spread, Mean(spread)), CILower95(spread), CIUpper95(spread)} {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "got %v", v)
	}
	assert.Equal(t, math.MaxFloat64, CIUpper95(spread))

	content := []byte("1e308,,34,,,,,false,,,60003760,,,0\n1e308,,34,,,,,false,,,60003760,,,0\n")
	snap, _, err := BuildSnapshot("Item", content, domain.RangeHub, domain.RangeHub)
	assert.NoError(t, err)
	assert.Equal(t, 1e308, snap.SellPrice95CI)
}
