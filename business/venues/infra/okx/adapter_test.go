package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
	Amount:     decimal.NewFromInt(1),
	AmountBase: "1000000000",
	InScale:    9,
	OutScale:   6,
}

const quoteJSON = `{
	"code": "0",
	"msg": "",
	"data": [{
		"fromTokenAmount": "1000000000",
		"toTokenAmount": "149870000",
		"priceImpactPercentage": "-0.05",
		"tradeFee": "0.0021",
		"dexRouterList": [
			{"subRouterList": [{"dexProtocol": [{"dexName": "Raydium", "percent": "60"}, {"dexName": "Meteora DLMM", "percent": "40"}]}]}
		]
	}]
}`

func newTestAdapter(t *testing.T, creds Credentials, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewAdapter(venuehttp.Config{BaseURL: srv.URL}, creds, logger.NewNop())
	require.NoError(t, err)
	return a
}

func TestAdapter_QuoteUnsigned(t *testing.T) {
	a := newTestAdapter(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/dex/aggregator/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "501", q.Get("chainId"))
		assert.Equal(t, "1000000000", q.Get("amount"))
		assert.Equal(t, "0.005", q.Get("slippage"))
		assert.Empty(t, r.Header.Get("OK-ACCESS-KEY"))
		_, _ = w.Write([]byte(quoteJSON))
	})

	q, err := a.Quote(context.Background(), solToUSDC)
	require.NoError(t, err)

	assert.True(t, q.OutAmount.Equal(decimal.RequireFromString("149.87")))
	assert.True(t, q.PriceImpact.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, []string{"Raydium", "Meteora DLMM"}, q.Route)
}

func TestAdapter_QuoteSigned(t *testing.T) {
	creds := Credentials{APIKey: "key", SecretKey: "secret", Passphrase: "pass", ProjectID: "proj"}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a := newTestAdapter(t, creds, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("OK-ACCESS-KEY"))
		assert.Equal(t, "pass", r.Header.Get("OK-ACCESS-PASSPHRASE"))
		assert.Equal(t, "proj", r.Header.Get("OK-ACCESS-PROJECT"))
		assert.Equal(t, "2024-05-01T12:00:00.000Z", r.Header.Get("OK-ACCESS-TIMESTAMP"))

		want := sign("secret", "2024-05-01T12:00:00.000Z"+"GET"+r.URL.Path+"?"+r.URL.RawQuery)
		assert.Equal(t, want, r.Header.Get("OK-ACCESS-SIGN"))
		_, _ = w.Write([]byte(quoteJSON))
	})
	a.now = func() time.Time { return fixed }

	_, err := a.Quote(context.Background(), solToUSDC)
	require.NoError(t, err)
}

func TestAdapter_ErrorCode(t *testing.T) {
	a := newTestAdapter(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"51000","msg":"Parameter amount error","data":[]}`))
	})

	_, err := a.Quote(context.Background(), solToUSDC)
	assert.True(t, apperror.HasCode(err, apperror.CodeVenueQuoteFailed), "got %v", err)
}

func TestSign_KnownVector(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog"), base64.
	assert.Equal(t, "97yD9DBThCSxMpjmqm+xQ+9NWaFJRhdZl0edvC0aPNg=",
		sign("key", "The quick brown fox jumps over the lazy dog"))
}
