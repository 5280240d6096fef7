package domain

// Side selects which half of the book an order belongs to.
type Side int

const (
	SideSell Side = iota
	SideBuy
)

// String returns "buy" or "sell".
func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// OrderRecord is one accepted row of a market log dump. It lives only for the
// duration of a single parse and is discarded once aggregated.
type OrderRecord struct {
	Price      float64
	IsBuyOrder bool
	LocationID float64 // opaque station id, compared against HubLocationIDs
	Jumps      int
	TypeID     int
}

// Side reports the book side the record belongs to.
func (o OrderRecord) Side() Side {
	if o.IsBuyOrder {
		return SideBuy
	}
	return SideSell
}
