package marketlog

import (
	"math"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// z95 is the two-sided 95% normal quantile.
const z95 = 1.96

// Aggregate is the per-side summary of one dump.
type Aggregate struct {
	SellPrice   float64 // lowest qualifying ask, or domain.NoPrice
	BuyPrice    float64 // highest qualifying bid, or domain.NoPrice
	SellCount   int
	BuyCount    int
	SellCILower float64 // lower 95% bound of qualifying asks, or domain.NoPrice
	BuyCIUpper  float64 // upper 95% bound of qualifying bids, or domain.NoPrice
}

// AggregateOrders filters orders by side and range and summarizes both
// sides. The buy and sell ranges are applied independently.
func AggregateOrders(orders []domain.OrderRecord, buyRange, sellRange domain.OrderRange) Aggregate {
	sells := qualifyingPrices(orders, sellRange, domain.SideSell)
	buys := qualifyingPrices(orders, buyRange, domain.SideBuy)

	return Aggregate{
		SellPrice:   Min(sells),
		BuyPrice:    Max(buys),
		SellCount:   len(sells),
		BuyCount:    len(buys),
		SellCILower: CILower95(sells),
		BuyCIUpper:  CIUpper95(buys),
	}
}

func qualifyingPrices(orders []domain.OrderRecord, r domain.OrderRange, side domain.Side) []float64 {
	var prices []float64
	for _, o := range orders {
		if domain.Qualifies(o, r, side) {
			prices = append(prices, o.Price)
		}
	}
	return prices
}

// Min returns the smallest price, or domain.NoPrice for an empty slice.
func Min(prices []float64) float64 {
	if len(prices) == 0 {
		return domain.NoPrice
	}
	m := prices[0]
	for _, p := range prices[1:] {
		if p < m {
			m = p
		}
	}
	return m
}

// Max returns the largest price, or domain.NoPrice for an empty slice.
func Max(prices []float64) float64 {
	if len(prices) == 0 {
		return domain.NoPrice
	}
	m := prices[0]
	for _, p := range prices[1:] {
		if p > m {
			m = p
		}
	}
	return m
}

// Mean returns the arithmetic mean, or 0 for an empty slice. It is kept as
// a running mean so prices near math.MaxFloat64 do not overflow a sum.
func Mean(prices []float64) float64 {
	var m float64
	for i, p := range prices {
		m += (p - m) / float64(i+1)
	}
	return m
}

// SampleStdDev returns the Bessel-corrected standard deviation around mean.
// It is 0 for fewer than two values.
func SampleStdDev(prices []float64, mean float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	scale, ss := scaledSquares(prices, mean)
	return scale * math.Sqrt(ss/float64(len(prices)-1))
}

// scaledSquares returns the largest absolute deviation from mean and the sum
// of squared deviations divided by its square.
func scaledSquares(prices []float64, mean float64) (scale, ss float64) {
	for _, p := range prices {
		scale = math.Max(scale, math.Abs(p-mean))
	}
	if scale == 0 {
		return 0, 0
	}
	for _, p := range prices {
		d := (p - mean) / scale
		ss += d * d
	}
	return scale, ss
}

// CILower95 returns mean - 1.96*stddev/sqrt(n). An empty slice yields
// domain.NoPrice and a single price is returned unchanged.
func CILower95(prices []float64) float64 {
	return ciBound(prices, -1)
}

// CIUpper95 returns mean + 1.96*stddev/sqrt(n), with the same edge cases as
// CILower95.
func CIUpper95(prices []float64) float64 {
	return ciBound(prices, 1)
}

// ciBound clamps to the finite float range so a snapshot always encodes.
func ciBound(prices []float64, sign float64) float64 {
	n := len(prices)
	switch n {
	case 0:
		return domain.NoPrice
	case 1:
		return prices[0]
	}
	mean := Mean(prices)
	scale, ss := scaledSquares(prices, mean)
	stderr := scale * math.Sqrt(ss/float64(n-1)/float64(n))
	bound := mean + sign*z95*stderr
	switch {
	case math.IsInf(bound, 1):
		return math.MaxFloat64
	case math.IsInf(bound, -1):
		return -math.MaxFloat64
	}
	return bound
}
