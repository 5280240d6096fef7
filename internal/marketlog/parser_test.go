package marketlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

func split(row string) []string { return strings.Split(row, ",") }

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want domain.OrderRecord
		ok   bool
	}{
		{
			name: "minimal hub sell",
			row:  "5.50,,34,,,,,false,,,60003760,,,0",
			want: domain.OrderRecord{Price: 5.5, LocationID: 60003760, TypeID: 34},
			ok:   true,
		},
		{
			name: "buy flag is case insensitive",
			row:  "100,1,35,x,x,x,x,TRUE,x,x,60008494,x,x,2",
			want: domain.OrderRecord{Price: 100, IsBuyOrder: true, LocationID: 60008494, Jumps: 2, TypeID: 35},
			ok:   true,
		},
		{
			name: "unknown buy flag is a sell",
			row:  "1,,34,,,,,yes,,,1,,,0",
			want: domain.OrderRecord{Price: 1, LocationID: 1, TypeID: 34},
			ok:   true,
		},
		{name: "thirteen fields", row: "5.50,,34,,,,,false,,,60003760,,", ok: false},
		{name: "header row", row: "price,volRemaining,typeID,range,orderID,volEntered,minVolume,bid,issueDate,duration,stationID,regionID,solarSystemID,jumps", ok: false},
		{name: "padded header", row: "  Price ,,34,,,,,false,,,1,,,0", ok: false},
		{name: "letter first", row: "abc,,34,,,,,false,,,1,,,0", ok: false},
		{name: "bad price", row: "5..5,,34,,,,,false,,,1,,,0", ok: false},
		{name: "nan price", row: "NaN,,34,,,,,false,,,1,,,0", ok: false},
		{name: "inf price", row: "+Inf,,34,,,,,false,,,1,,,0", ok: false},
		{name: "bad location", row: "5,,34,,,,,false,,,x1,,,0", ok: false},
		{name: "fractional jumps", row: "5,,34,,,,,false,,,1,,,0.5", ok: false},
		{name: "empty type id", row: "5,,,,,,,false,,,1,,,0", ok: false},
		{name: "untrimmed numeric field", row: "5,,34,,,,,false,,, 1,,,0", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRow(split(tt.row))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRowExtraFieldsIgnored(t *testing.T) {
	got, ok := ParseRow(split("7,,34,,,,,false,,,60003760,,,0,extra,more"))
	require.True(t, ok)
	assert.Equal(t, 7.0, got.Price)
}

func TestParseLog(t *testing.T) {
	dump := strings.Join([]string{
		"price,volRemaining,typeID,range,orderID,volEntered,minVolume,bid,issueDate,duration,stationID,regionID,solarSystemID,jumps,",
		"5.50,100,34,32767,1,100,1,False,2024-01-01,90,60003760,10000002,30000142,0,",
		"short,row",
		"5.60,100,34,32767,2,100,1,True,2024-01-01,90,60003760,10000002,30000142,0,",
		"",
		"oops,100,34,32767,3,100,1,True,2024-01-01,90,60003760,10000002,30000142,0,",
	}, "\n")

	orders, stats := ParseLog(strings.NewReader(dump))
	require.Len(t, orders, 2)
	assert.Equal(t, 5.5, orders[0].Price)
	assert.False(t, orders[0].IsBuyOrder)
	assert.True(t, orders[1].IsBuyOrder)
	assert.Equal(t, 5, stats.TotalRows)
	assert.Equal(t, 2, stats.ParsedRows)
	assert.Equal(t, 3, stats.Rejected())
}

func TestParseLogToleratesStrayQuotes(t *testing.T) {
	dump := "1,,34,,,,,false,,,1,,,0\n2\"x,,34,,,,,false,,,1,,,0\n3,,34,,,,,false,,,1,,,0\n"
	orders, stats := ParseLog(strings.NewReader(dump))
	require.Len(t, orders, 2)
	assert.Equal(t, 1.0, orders[0].Price)
	assert.Equal(t, 3.0, orders[1].Price)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 2, stats.ParsedRows)
}

func TestParseLogEmpty(t *testing.T) {
	orders, stats := ParseLog(strings.NewReader(""))
	assert.Empty(t, orders)
	assert.Zero(t, stats.TotalRows)
}
