package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	unitsdomain "github.com/fd1az/solquote/business/units/domain"
	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/business/venues/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

const (
	mintSOL  = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm"
)

type staticScales map[string]unitsdomain.Scale

func (s staticScales) ResolveScale(_ context.Context, mint string) unitsdomain.Scale {
	if v, ok := s[mint]; ok {
		return v
	}
	return unitsdomain.DefaultScale
}

var scales = staticScales{mintSOL: 9, mintUSDC: 6}

type fakeAdapter struct {
	id    string
	out   string
	err   error
	delay time.Duration
	panic bool

	mu   sync.Mutex
	reqs []app.QuoteRequest
}

func (f *fakeAdapter) ID() string { return f.id }

func (f *fakeAdapter) Quote(ctx context.Context, req app.QuoteRequest) (*domain.VenueQuote, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.VenueQuote{
		InAmount:  req.Amount,
		OutAmount: decimal.RequireFromString(f.out),
		Route:     []string{f.id + "-pool"},
	}, nil
}

func newAggregator(t *testing.T, adapters ...app.VenueAdapter) *app.Aggregator {
	t.Helper()
	a, err := app.NewAggregator(adapters, scales, logger.NewNop())
	require.NoError(t, err)
	return a
}

func TestCompareVenues_OneQuotePerVenue(t *testing.T) {
	adapters := []app.VenueAdapter{
		&fakeAdapter{id: "a", out: "150"},
		&fakeAdapter{id: "b", err: errors.New("down")},
		&fakeAdapter{id: "c", out: "149"},
	}

	c := newAggregator(t, adapters...).CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(1))

	require.Len(t, c.Quotes, 3)
	for i, q := range c.Quotes {
		assert.Equal(t, adapters[i].ID(), q.VenueID)
	}
	assert.Equal(t, mintSOL, c.InputMint)
	assert.Equal(t, mintUSDC, c.OutputMint)
}

func TestCompareVenues_RequestInBaseUnits(t *testing.T) {
	f := &fakeAdapter{id: "a", out: "150"}

	newAggregator(t, f).CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.RequireFromString("1.5"))

	require.Len(t, f.reqs, 1)
	assert.Equal(t, "1500000000", f.reqs[0].AmountBase)
	assert.Equal(t, unitsdomain.Scale(9), f.reqs[0].InScale)
	assert.Equal(t, unitsdomain.Scale(6), f.reqs[0].OutScale)
}

func TestCompareVenues_SlowVenueBecomesTombstone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := newAggregator(t,
		&fakeAdapter{id: "A", out: "150"},
		&fakeAdapter{id: "B", out: "151.5"},
		&fakeAdapter{id: "C", out: "999", delay: 5 * time.Second},
		&fakeAdapter{id: "D", out: "149"},
	).CompareVenues(ctx, mintSOL, mintUSDC, decimal.NewFromInt(1))

	require.Len(t, c.Quotes, 4)
	slow := c.Quotes[2]
	assert.True(t, slow.IsTombstone())
	assert.True(t, slow.OutAmount.IsZero())
	assert.True(t, strings.HasPrefix(slow.ErrorReason, string(apperror.CodeVenueQuoteFailed)), slow.ErrorReason)

	require.NotNil(t, c.Best)
	assert.Equal(t, "B", c.Best.VenueID)

	require.NotEmpty(t, c.Opportunities)
	for _, o := range c.Opportunities {
		assert.NotEqual(t, "C", o.BuyVenue)
		assert.NotEqual(t, "C", o.SellVenue)
	}
}

func TestCompareVenues_ZeroOutputAndPanicAreTombstones(t *testing.T) {
	c := newAggregator(t,
		&fakeAdapter{id: "zero", out: "0"},
		&fakeAdapter{id: "panic", panic: true},
		&fakeAdapter{id: "ok", out: "10"},
	).CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(1))

	assert.True(t, c.Quotes[0].IsTombstone())
	assert.True(t, c.Quotes[1].IsTombstone())
	assert.False(t, c.Quotes[2].IsTombstone())
	assert.Equal(t, "ok", c.Best.VenueID)
}

func TestCompareVenues_AllFail(t *testing.T) {
	c := newAggregator(t,
		&fakeAdapter{id: "a", err: errors.New("x")},
		&fakeAdapter{id: "b", err: errors.New("y")},
	).CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(1))

	require.Len(t, c.Quotes, 2)
	require.NotNil(t, c.Best)
	assert.Equal(t, "a", c.Best.VenueID)
	assert.Empty(t, c.Opportunities)
}

func TestCompareVenues_Opportunity(t *testing.T) {
	tests := []struct {
		name      string
		outB      string
		wantCount int
	}{
		{name: "wide spread", outB: "100.6", wantCount: 1},
		{name: "narrow spread", outB: "100.2", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAggregator(t,
				&fakeAdapter{id: "a", out: "100"},
				&fakeAdapter{id: "b", out: tt.outB},
			).CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(1))

			require.Len(t, c.Opportunities, tt.wantCount)
			if tt.wantCount == 1 {
				o := c.Opportunities[0]
				assert.Equal(t, "a", o.BuyVenue)
				assert.Equal(t, "b", o.SellVenue)
				pct, _ := o.SpreadPct.Float64()
				assert.InDelta(t, 0.6, pct, 1e-9)
			}
		})
	}
}

func TestCompareVenues_Idempotent(t *testing.T) {
	a := newAggregator(t,
		&fakeAdapter{id: "a", out: "150"},
		&fakeAdapter{id: "b", out: "151"},
		&fakeAdapter{id: "c", err: errors.New("down")},
	)

	first := a.CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(2))
	second := a.CompareVenues(context.Background(), mintSOL, mintUSDC, decimal.NewFromInt(2))

	first.Timestamp, second.Timestamp = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestAggregator_Venues(t *testing.T) {
	a := newAggregator(t, &fakeAdapter{id: "x"}, &fakeAdapter{id: "y"})
	assert.Equal(t, []string{"x", "y"}, a.Venues())
}
