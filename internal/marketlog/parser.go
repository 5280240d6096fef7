// Package marketlog turns the comma-separated market log dumps written by the
// game client into typed order records and aggregates them into a
// domain.MarketSnapshot.
package marketlog

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// Column positions inside a dump row.
const (
	colPrice      = 0
	colTypeID     = 2
	colIsBuyOrder = 7
	colLocationID = 10
	colJumps      = 13

	minFields = 14
)

// ParseStats carries the diagnostic counts of one ParseLog call.
type ParseStats struct {
	TotalRows  int
	ParsedRows int
}

// Rejected returns the number of rows that did not produce a record.
func (s ParseStats) Rejected() int {
	return s.TotalRows - s.ParsedRows
}

// ParseRow converts one already-split row into an OrderRecord. It returns
// false for short rows, header-like rows and rows with any unparsable field.
func ParseRow(fields []string) (domain.OrderRecord, bool) {
	if len(fields) < minFields {
		return domain.OrderRecord{}, false
	}
	if looksLikeHeader(fields[colPrice]) {
		return domain.OrderRecord{}, false
	}

	price, err := strconv.ParseFloat(fields[colPrice], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.OrderRecord{}, false
	}
	isBuy := strings.EqualFold(fields[colIsBuyOrder], "true")
	locationID, err := strconv.ParseFloat(fields[colLocationID], 64)
	if err != nil {
		return domain.OrderRecord{}, false
	}
	jumps, err := strconv.ParseInt(fields[colJumps], 10, 32)
	if err != nil {
		return domain.OrderRecord{}, false
	}
	typeID, err := strconv.ParseInt(fields[colTypeID], 10, 32)
	if err != nil {
		return domain.OrderRecord{}, false
	}

	return domain.OrderRecord{
		Price:      price,
		IsBuyOrder: isBuy,
		LocationID: locationID,
		Jumps:      int(jumps),
		TypeID:     int(typeID),
	}, true
}

// looksLikeHeader is a best-effort check for the column header line or a
// corrupted row: the first field is "price" or starts with a letter.
func looksLikeHeader(first string) bool {
	trimmed := strings.TrimSpace(first)
	if strings.EqualFold(trimmed, "price") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return r != utf8.RuneError && unicode.IsLetter(r)
}

// ParseLog reads every row of a dump and returns the accepted records in file
// order. Malformed rows are skipped and only show up in the stats.
func ParseLog(r io.Reader) ([]domain.OrderRecord, ParseStats) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		orders []domain.OrderRecord
		stats  ParseStats
	)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.TotalRows++
				continue
			}
			// Underlying reader failed; keep what was parsed so far.
			break
		}
		stats.TotalRows++
		if order, ok := ParseRow(fields); ok {
			orders = append(orders, order)
			stats.ParsedRows++
		}
	}
	return orders, stats
}
