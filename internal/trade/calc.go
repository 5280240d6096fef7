// Package trade computes station-trading economics for a snapshot: broker
// fees, sales tax and the profit of buying at the best bid and relisting at
// the best ask.
package trade

import (
	"math"
	"strconv"
	"strings"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// tick is the price step used to outbid or undercut the current best order.
const tick = 0.01

// Result is the outcome of one buy-then-resell round trip per unit.
type Result struct {
	Revenue       float64 `json:"revenue"`
	CostOfSales   float64 `json:"costOfSales"`
	Profit        float64 `json:"profit"`
	Margin        float64 `json:"margin"` // percent of revenue
	Markup        float64 `json:"markup"` // percent of cost
	BuyOrderCost  float64 `json:"buyOrderCost"`
	SellOrderCost float64 `json:"sellOrderCost"`
}

// NPCBrokerFee is the station broker fee rate given skills and standings.
func NPCBrokerFee(p domain.Profile) float64 {
	return (3 - (float64(p.BrokerRelations)*0.3 + p.FactionStanding*0.03 + p.CorpStanding*0.02)) / 100
}

// BuyBrokerFee returns the custom buy fee when enabled, else the NPC fee.
func BuyBrokerFee(p domain.Profile) float64 {
	if p.UseBuyCustomBroker {
		return p.BuyCustomBroker
	}
	return NPCBrokerFee(p)
}

// SellBrokerFee returns the custom sell fee when enabled, else the NPC fee.
func SellBrokerFee(p domain.Profile) float64 {
	if p.UseSellCustomBroker {
		return p.SellCustomBroker
	}
	return NPCBrokerFee(p)
}

// SalesTax is the transaction tax rate for the given Accounting level.
func SalesTax(accounting uint8) float64 {
	return 0.075 * (1 - float64(accounting)*0.11)
}

// Calculate prices a round trip that buys one tick above buyPrice and sells
// one tick below sellPrice. A missing side (negative price) yields a zero
// Result.
func Calculate(sellPrice, buyPrice float64, p domain.Profile) Result {
	if sellPrice < 0 || buyPrice < 0 {
		return Result{}
	}

	buyFee := BuyBrokerFee(p)
	sellFee := SellBrokerFee(p)
	tax := SalesTax(p.Accounting)

	sell := sellPrice - tick
	buy := buyPrice + tick

	r := Result{
		Revenue:       sell - sell*sellFee - sell*tax,
		CostOfSales:   buy + buy*buyFee,
		BuyOrderCost:  buyPrice * buyFee,
		SellOrderCost: sellPrice*sellFee + sellPrice*tax,
	}
	r.Profit = r.Revenue - r.CostOfSales
	if r.Revenue != 0 {
		r.Margin = 100 * r.Profit / r.Revenue
	}
	if r.CostOfSales != 0 {
		r.Markup = 100 * r.Profit / r.CostOfSales
	}
	return r
}

// CalculateSnapshot runs Calculate on the best prices of snap.
func CalculateSnapshot(snap domain.MarketSnapshot, p domain.Profile) Result {
	return Calculate(snap.SellPrice, snap.BuyPrice, p)
}

// MeetsThreshold reports whether the margin clears the profile's margin
// threshold, which is stored as a fraction (0.1 = 10%).
func (r Result) MeetsThreshold(p domain.Profile) bool {
	return r.Revenue != 0 && r.Margin >= p.MarginThreshold*100
}

// FormatISK renders an amount like "1,234.56 ISK". Negative amounts mean no
// price and render as "- ISK".
func FormatISK(amount float64) string {
	if amount < 0 {
		return "- ISK"
	}
	return groupThousands(strconv.FormatFloat(amount, 'f', 2, 64)) + " ISK"
}

// FormatPercent renders a percentage with two decimals. Magnitudes of 10000%
// and more render as infinity.
func FormatPercent(v float64) string {
	if math.Abs(v) >= 10000 {
		if v > 0 {
			return "∞%"
		}
		return "-∞%"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.HasPrefix(s, "-") {
		return "-" + groupThousands(s[1:]) + "%"
	}
	return groupThousands(s) + "%"
}

func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
