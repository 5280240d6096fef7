package domain

// NoPrice marks a price or confidence bound for a side with no qualifying orders.
const NoPrice = -1.0

// MarketSnapshot is the normalized price summary produced from one dump. It is
// built once, handed to the publishers and never mutated afterwards.
type MarketSnapshot struct {
	ItemName       string  `json:"itemName"`
	TypeID         int     `json:"typeId"`
	SellPrice      float64 `json:"sellPrice"`
	BuyPrice       float64 `json:"buyPrice"`
	SellOrderCount int     `json:"sellOrderCount"`
	BuyOrderCount  int     `json:"buyOrderCount"`
	SellPrice95CI  float64 `json:"sellPrice95Ci"` // lower bound
	BuyPrice95CI   float64 `json:"buyPrice95Ci"`  // upper bound
}

// HasSell reports whether any sell order qualified.
func (s MarketSnapshot) HasSell() bool { return s.SellOrderCount > 0 }

// HasBuy reports whether any buy order qualified.
func (s MarketSnapshot) HasBuy() bool { return s.BuyOrderCount > 0 }
