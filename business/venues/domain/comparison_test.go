package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(venue, in, out string) VenueQuote {
	return VenueQuote{
		VenueID:   venue,
		InAmount:  decimal.RequireFromString(in),
		OutAmount: decimal.RequireFromString(out),
	}
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name   string
		quotes []VenueQuote
		want   int
	}{
		{name: "no_quotes", quotes: nil, want: -1},
		{name: "greatest_output", quotes: []VenueQuote{quote("a", "1", "99"), quote("b", "1", "101"), quote("c", "1", "100")}, want: 1},
		{name: "first_wins_ties", quotes: []VenueQuote{quote("a", "1", "101"), quote("b", "1", "101")}, want: 0},
		{name: "tombstones_skipped", quotes: []VenueQuote{Tombstone("a", "down"), quote("b", "1", "50")}, want: 1},
		{name: "all_tombstones", quotes: []VenueQuote{Tombstone("a", "down"), Tombstone("b", "down")}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectBest(tt.quotes))
		})
	}
}

func TestNewVenueComparison_Efficiency(t *testing.T) {
	quotes := []VenueQuote{quote("a", "1", "150"), quote("b", "1", "148.5"), Tombstone("c", "timeout")}

	c := NewVenueComparison("in", "out", decimal.NewFromInt(1), quotes, time.Unix(0, 0))

	require.NotNil(t, c.Best)
	assert.Equal(t, "a", c.Best.VenueID)
	require.NotNil(t, c.Quotes[0].EfficiencyPct)
	assert.True(t, c.Quotes[0].EfficiencyPct.Equal(decimal.NewFromInt(100)))
	assert.True(t, c.Quotes[1].EfficiencyPct.Equal(decimal.RequireFromString("99")))
	assert.Nil(t, c.Quotes[2].EfficiencyPct)
	assert.Len(t, c.Healthy(), 2)
}

func TestNewVenueComparison_AllTombstones(t *testing.T) {
	quotes := []VenueQuote{Tombstone("a", "down"), Tombstone("b", "down")}

	c := NewVenueComparison("in", "out", decimal.NewFromInt(1), quotes, time.Now())

	require.NotNil(t, c.Best)
	assert.Equal(t, "a", c.Best.VenueID)
	assert.True(t, c.Best.IsTombstone())
	assert.Empty(t, c.Opportunities)
	assert.Nil(t, c.Quotes[0].EfficiencyPct)
}

func TestNewVenueComparison_NoVenues(t *testing.T) {
	c := NewVenueComparison("in", "out", decimal.NewFromInt(1), nil, time.Now())
	assert.Nil(t, c.Best)
	assert.Empty(t, c.Quotes)
	assert.NotNil(t, c.Opportunities)
}

func TestScanArbitrage_Threshold(t *testing.T) {
	tests := []struct {
		name    string
		quotes  []VenueQuote
		wantPct []string
	}{
		{
			name:    "above_threshold",
			quotes:  []VenueQuote{quote("a", "1", "100"), quote("b", "1", "100.6")},
			wantPct: []string{"0.6"},
		},
		{
			name:    "below_threshold",
			quotes:  []VenueQuote{quote("a", "1", "100"), quote("b", "1", "100.2")},
			wantPct: nil,
		},
		{
			name:    "exactly_threshold_excluded",
			quotes:  []VenueQuote{quote("a", "1", "100"), quote("b", "1", "100.5")},
			wantPct: nil,
		},
		{
			name:    "tombstone_never_paired",
			quotes:  []VenueQuote{quote("a", "1", "100"), Tombstone("b", "down"), quote("c", "1", "100.1")},
			wantPct: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opps := ScanArbitrage(tt.quotes)
			require.Len(t, opps, len(tt.wantPct))
			for i, want := range tt.wantPct {
				assert.True(t, opps[i].SpreadPct.Equal(decimal.RequireFromString(want)),
					"SpreadPct = %s, want %s", opps[i].SpreadPct, want)
			}
		})
	}
}

func TestScanArbitrage_Sides(t *testing.T) {
	opps := ScanArbitrage([]VenueQuote{quote("dear", "2", "202"), quote("cheap", "2", "200")})

	require.Len(t, opps, 1)
	o := opps[0]
	assert.Equal(t, "cheap", o.BuyVenue)
	assert.Equal(t, "dear", o.SellVenue)
	assert.True(t, o.BuyPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, o.SellPrice.Equal(decimal.NewFromInt(101)))
	assert.True(t, o.Spread.Equal(decimal.NewFromInt(1)))
	assert.True(t, o.ProfitEstimate.Equal(decimal.NewFromInt(2)))
}

func TestScanArbitrage_SortedWidestFirst(t *testing.T) {
	opps := ScanArbitrage([]VenueQuote{
		quote("a", "1", "100"),
		quote("b", "1", "101"),
		quote("c", "1", "103"),
	})

	require.Len(t, opps, 3)
	for i := 1; i < len(opps); i++ {
		assert.False(t, opps[i].SpreadPct.GreaterThan(opps[i-1].SpreadPct))
	}
	assert.Equal(t, "a", opps[0].BuyVenue)
	assert.Equal(t, "c", opps[0].SellVenue)
}

func TestScanArbitrage_StableOnTies(t *testing.T) {
	opps := ScanArbitrage([]VenueQuote{
		quote("a", "1", "100"),
		quote("b", "1", "101"),
		quote("c", "1", "100"),
	})

	require.Len(t, opps, 2)
	assert.Equal(t, "a", opps[0].BuyVenue)
	assert.Equal(t, "c", opps[1].BuyVenue)
}
