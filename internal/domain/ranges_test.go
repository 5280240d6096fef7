package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFromOrdinal(t *testing.T) {
	assert.Equal(t, RangeHub, RangeFromOrdinal(0))
	assert.Equal(t, RangeSystem, RangeFromOrdinal(1))
	assert.Equal(t, RangeOneJump, RangeFromOrdinal(2))
	assert.Equal(t, RangeTwoJump, RangeFromOrdinal(3))
	for _, v := range []int{4, 5, 255, 1000, -1} {
		assert.Equal(t, RangeRegion, RangeFromOrdinal(v), "ordinal %d", v)
	}
}

func TestRangeIncludes(t *testing.T) {
	hub0 := OrderRecord{LocationID: 60003760, Jumps: 0}
	hub1 := OrderRecord{LocationID: 60003760, Jumps: 1}
	other0 := OrderRecord{LocationID: 60000001, Jumps: 0}
	other2 := OrderRecord{LocationID: 60000001, Jumps: 2}
	far := OrderRecord{LocationID: 60000001, Jumps: 40}

	tests := []struct {
		r    OrderRange
		want [5]bool
	}{
		{RangeHub, [5]bool{true, false, false, false, false}},
		{RangeSystem, [5]bool{true, false, true, false, false}},
		{RangeOneJump, [5]bool{true, true, true, false, false}},
		{RangeTwoJump, [5]bool{true, true, true, true, false}},
		{RangeRegion, [5]bool{true, true, true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.r.String(), func(t *testing.T) {
			for i, o := range []OrderRecord{hub0, hub1, other0, other2, far} {
				assert.Equal(t, tt.want[i], tt.r.Includes(o), "record %d", i)
			}
		})
	}
}

func TestRangesAreNested(t *testing.T) {
	orders := []OrderRecord{
		{LocationID: 60008494, Jumps: 0},
		{LocationID: 1, Jumps: 0},
		{LocationID: 1, Jumps: 1},
		{LocationID: 1, Jumps: 2},
		{LocationID: 60005686, Jumps: 3},
	}
	ranges := []OrderRange{RangeHub, RangeSystem, RangeOneJump, RangeTwoJump, RangeRegion}
	for _, o := range orders {
		for i := 0; i < len(ranges)-1; i++ {
			if ranges[i].Includes(o) {
				assert.True(t, ranges[i+1].Includes(o), "%s accepts %+v but %s does not", ranges[i], o, ranges[i+1])
			}
		}
	}
}

func TestQualifies(t *testing.T) {
	sell := OrderRecord{Price: 5.5, LocationID: 60003760}
	buy := OrderRecord{Price: 5.5, IsBuyOrder: true, LocationID: 60003760}

	assert.True(t, Qualifies(sell, RangeHub, SideSell))
	assert.False(t, Qualifies(sell, RangeHub, SideBuy))
	assert.True(t, Qualifies(buy, RangeHub, SideBuy))
	assert.False(t, Qualifies(buy, RangeRegion, SideSell))
}

func TestIsHub(t *testing.T) {
	for _, id := range HubLocationIDs {
		assert.True(t, IsHub(id))
	}
	assert.False(t, IsHub(60003761))
}

func TestOrderRangeJSON(t *testing.T) {
	b, err := json.Marshal(RangeTwoJump)
	require.NoError(t, err)
	assert.Equal(t, "3", string(b))

	var r OrderRange
	require.NoError(t, json.Unmarshal([]byte("9"), &r))
	assert.Equal(t, RangeRegion, r)
	require.NoError(t, json.Unmarshal([]byte("1"), &r))
	assert.Equal(t, RangeSystem, r)
	assert.Error(t, json.Unmarshal([]byte(`"hub"`), &r))
}
