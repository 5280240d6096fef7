package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

func TestFeeRates(t *testing.T) {
	p := domain.DefaultProfile("x")
	assert.InDelta(t, 0.015, NPCBrokerFee(p), 1e-12)
	assert.InDelta(t, 0.03375, SalesTax(5), 1e-12)
	assert.InDelta(t, 0.075, SalesTax(0), 1e-12)

	p.FactionStanding = 10
	p.CorpStanding = 10
	assert.InDelta(t, 0.01, NPCBrokerFee(p), 1e-12)

	p.UseBuyCustomBroker = true
	p.BuyCustomBroker = 0.005
	assert.Equal(t, 0.005, BuyBrokerFee(p))
	assert.InDelta(t, 0.01, SellBrokerFee(p), 1e-12)
}

func TestCalculate(t *testing.T) {
	p := domain.DefaultProfile("x")
	r := Calculate(100.01, 90, p)

	// sell 100.00, buy 90.01, fees 1.5%, tax 3.375%
	assert.InDelta(t, 100-1.5-3.375, r.Revenue, 1e-9)
	assert.InDelta(t, 90.01*1.015, r.CostOfSales, 1e-9)
	assert.InDelta(t, r.Revenue-r.CostOfSales, r.Profit, 1e-12)
	assert.InDelta(t, 100*r.Profit/r.Revenue, r.Margin, 1e-12)
	assert.InDelta(t, 100*r.Profit/r.CostOfSales, r.Markup, 1e-12)
	assert.InDelta(t, 90*0.015, r.BuyOrderCost, 1e-12)
	assert.InDelta(t, 100.01*(0.015+0.03375), r.SellOrderCost, 1e-9)
	assert.False(t, r.MeetsThreshold(p), "a margin near 4 percent is below the 10 percent threshold")

	assert.True(t, Calculate(200, 100, p).MeetsThreshold(p))
}

func TestCalculateMissingSide(t *testing.T) {
	p := domain.DefaultProfile("x")
	assert.Equal(t, Result{}, Calculate(domain.NoPrice, 10, p))
	assert.Equal(t, Result{}, Calculate(10, domain.NoPrice, p))
	assert.False(t, Result{}.MeetsThreshold(p))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "- ISK", FormatISK(-1))
	assert.Equal(t, "0.00 ISK", FormatISK(0))
	assert.Equal(t, "999.50 ISK", FormatISK(999.5))
	assert.Equal(t, "1,234,567.89 ISK", FormatISK(1234567.891))
	assert.Equal(t, "12.35%", FormatPercent(12.345678))
	assert.Equal(t, "-3.00%", FormatPercent(-3))
	assert.Equal(t, "9,999.00%", FormatPercent(9999))
	assert.Equal(t, "∞%", FormatPercent(10000))
	assert.Equal(t, "-∞%", FormatPercent(-20000))
}
