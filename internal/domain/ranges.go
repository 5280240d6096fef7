package domain

import (
	"encoding/json"
	"fmt"
)

// OrderRange is the breadth of locations considered when aggregating orders,
// from Hub (narrowest) to Region (broadest). The UI sends it as a small
// ordinal; see RangeFromOrdinal.
type OrderRange uint8

const (
	RangeHub     OrderRange = 0
	RangeSystem  OrderRange = 1
	RangeOneJump OrderRange = 2
	RangeTwoJump OrderRange = 3
	RangeRegion  OrderRange = 4
)

// HubLocationIDs are the station ids of the five main trade hubs: Jita,
// Rens, Amarr, Dodixie and Hek.
var HubLocationIDs = [5]float64{60003760, 60004588, 60008494, 60011866, 60005686}

// RangeFromOrdinal converts a raw ordinal into an OrderRange. Anything outside
// 0..3 clamps to Region, the widest range.
func RangeFromOrdinal(v int) OrderRange {
	switch v {
	case 0:
		return RangeHub
	case 1:
		return RangeSystem
	case 2:
		return RangeOneJump
	case 3:
		return RangeTwoJump
	default:
		return RangeRegion
	}
}

// String returns a short label for logs and status text.
func (r OrderRange) String() string {
	switch r {
	case RangeHub:
		return "hub"
	case RangeSystem:
		return "system"
	case RangeOneJump:
		return "one_jump"
	case RangeTwoJump:
		return "two_jump"
	default:
		return "region"
	}
}

// IsHub reports whether locationID is one of HubLocationIDs.
func IsHub(locationID float64) bool {
	for _, id := range HubLocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

// Includes reports whether the order's location falls inside the range.
// The side of the order is not considered.
func (r OrderRange) Includes(o OrderRecord) bool {
	switch r {
	case RangeHub:
		return o.Jumps == 0 && IsHub(o.LocationID)
	case RangeSystem:
		return o.Jumps == 0
	case RangeOneJump:
		return o.Jumps < 2
	case RangeTwoJump:
		return o.Jumps < 3
	default:
		return true
	}
}

// Qualifies reports whether the order is on the requested side and inside the
// range. Buy and sell ranges are chosen independently by the caller.
func Qualifies(o OrderRecord, r OrderRange, side Side) bool {
	return o.Side() == side && r.Includes(o)
}

// MarshalJSON encodes the range as its ordinal.
func (r OrderRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(r))
}

// UnmarshalJSON decodes an ordinal and applies the clamp-to-Region policy.
func (r *OrderRange) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("order range: %w", err)
	}
	*r = RangeFromOrdinal(v)
	return nil
}
