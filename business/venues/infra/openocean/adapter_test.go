package openocean

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/business/venues/infra/venuehttp"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/logger"
)

var solToUSDC = app.QuoteRequest{
	InputMint:  "So11111111111111111111111111111111111111112",
	OutputMint: "EPjFWdd5AufqSSqeM2qJxHxSRuQQxcT1FZWSBN6fB1Gm",
	Amount:     decimal.RequireFromString("1.5"),
	AmountBase: "1500000000",
	InScale:    9,
	OutScale:   6,
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewAdapter(venuehttp.Config{BaseURL: srv.URL}, logger.NewNop())
	require.NoError(t, err)
	return a
}

func TestAdapter_QuoteSendsHumanAmount(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/solana/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1.5", q.Get("amount"))
		assert.Equal(t, "0.5", q.Get("slippage"))
		assert.Equal(t, "So11111111111111111111111111111111111111112", q.Get("inTokenAddress"))

		_, _ = w.Write([]byte(`{
			"code": 200,
			"data": {
				"inAmount": "1500000000",
				"outAmount": "225300000",
				"price_impact": "-0.02%",
				"dexes": [{"dexIndex": 1, "dexCode": "Raydium", "swapAmount": "225300000"}, {"dexCode": "Orca"}]
			}
		}`))
	})

	q, err := a.Quote(context.Background(), solToUSDC)
	require.NoError(t, err)

	assert.True(t, q.InAmount.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, q.OutAmount.Equal(decimal.RequireFromString("225.3")))
	assert.True(t, q.PriceImpact.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, []string{"Raydium", "Orca"}, q.Route)
	assert.Nil(t, q.Fee)
}

func TestAdapter_BadCode(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 400, "error": "invalid token"}`))
	})

	_, err := a.Quote(context.Background(), solToUSDC)
	assert.True(t, apperror.HasCode(err, apperror.CodeVenueQuoteFailed), "got %v", err)
}
