package marketlog

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// unknownItem is the display name used when a file name does not follow any
// known naming convention.
const unknownItem = "Unknown"

// Assemble combines an item name, the parsed records and the aggregate into
// a snapshot. The first record's type id is authoritative; dumps are assumed
// to hold a single item. orders must not be empty.
func Assemble(itemName string, orders []domain.OrderRecord, agg Aggregate) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		ItemName:       itemName,
		TypeID:         orders[0].TypeID,
		SellPrice:      agg.SellPrice,
		BuyPrice:       agg.BuyPrice,
		SellOrderCount: agg.SellCount,
		BuyOrderCount:  agg.BuyCount,
		SellPrice95CI:  agg.SellCILower,
		BuyPrice95CI:   agg.BuyCIUpper,
	}
}

// BuildSnapshot runs parse, aggregate and assemble over the content of one
// dump. It returns domain.ErrNoOrders when no row could be parsed; the stats
// are returned either way.
func BuildSnapshot(itemName string, content []byte, buyRange, sellRange domain.OrderRange) (domain.MarketSnapshot, ParseStats, error) {
	orders, stats := ParseLog(bytes.NewReader(content))
	if len(orders) == 0 {
		return domain.MarketSnapshot{}, stats, domain.ErrNoOrders
	}
	agg := AggregateOrders(orders, buyRange, sellRange)
	return Assemble(itemName, orders, agg), stats, nil
}

// ItemNameFromFilename derives the display name from a dump's base name.
//
// "<location>-<typeId>-<name...>.<ext>" yields the name segments after the
// numeric type id. Any other name with at least three hyphen segments (the
// client's "<region>-<name...>-<timestamp>.txt") yields every segment except
// the first and the last. Hyphens inside the name are preserved.
func ItemNameFromFilename(fileName string) string {
	parts := strings.Split(fileName, "-")
	if len(parts) < 3 {
		return unknownItem
	}

	var name string
	if isDigits(parts[1]) {
		rest := strings.Join(parts[2:], "-")
		name = strings.TrimSuffix(rest, filepath.Ext(rest))
	} else {
		name = strings.Join(parts[1:len(parts)-1], "-")
	}

	if name == "" {
		return unknownItem
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
