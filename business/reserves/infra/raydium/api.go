package raydium

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/business/reserves/app"
	"github.com/fd1az/solquote/business/reserves/domain"
	"github.com/fd1az/solquote/internal/apperror"
	"github.com/fd1az/solquote/internal/circuitbreaker"
	"github.com/fd1az/solquote/internal/httpclient"
	"github.com/fd1az/solquote/internal/logger"
	"github.com/fd1az/solquote/internal/ratelimit"
)

const (
	// DefaultAPIURL is the Raydium v3 API.
	DefaultAPIURL = "https://api-v3.raydium.io"

	poolKeysEndpoint   = "/pools/key/ids"
	poolInfoEndpoint   = "/pools/info/ids"
	poolByMintEndpoint = "/pools/info/mint"

	apiTimeout = 15 * time.Second
)

// APIConfig holds configuration for the Raydium API client.
type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// DefaultAPIConfig returns sensible defaults.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:           DefaultAPIURL,
		Timeout:           apiTimeout,
		RequestsPerMinute: 300,
	}
}

type envelope[T any] struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    T      `json:"data"`
}

type apiMint struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

func (m apiMint) toDomain() domain.MintRef {
	return domain.MintRef{Address: m.Address, Symbol: m.Symbol, Decimals: m.Decimals}
}

type apiPoolInfo struct {
	Type        string          `json:"type"`
	ProgramID   string          `json:"programId"`
	ID          string          `json:"id"`
	MintA       apiMint         `json:"mintA"`
	MintB       apiMint         `json:"mintB"`
	MintAmountA decimal.Decimal `json:"mintAmountA"`
	MintAmountB decimal.Decimal `json:"mintAmountB"`
	FeeRate     decimal.Decimal `json:"feeRate"`
	TVL         decimal.Decimal `json:"tvl"`
}

type apiPoolList struct {
	Count       int            `json:"count"`
	Data        []*apiPoolInfo `json:"data"`
	HasNextPage bool           `json:"hasNextPage"`
}

type apiPoolKeys struct {
	ProgramID string  `json:"programId"`
	ID        string  `json:"id"`
	MintA     apiMint `json:"mintA"`
	MintB     apiMint `json:"mintB"`
	Vault     struct {
		A string `json:"A"`
		B string `json:"B"`
	} `json:"vault"`
	Config *struct {
		TickSpacing     uint16 `json:"tickSpacing"`
		TradeFeeRate    uint32 `json:"tradeFeeRate"`
		ProtocolFeeRate uint32 `json:"protocolFeeRate"`
	} `json:"config"`
}

// APIClient reads the Raydium v3 pool API. It serves as the pool registry
// and the pool keys source.
type APIClient struct {
	client httpclient.Client
	config APIConfig
	logger logger.LoggerInterface
	tracer trace.Tracer
	cb     *circuitbreaker.CircuitBreaker[struct{}]
}

// NewAPIClient creates a Raydium API client.
func NewAPIClient(cfg APIConfig, log logger.LoggerInterface, opts ...httpclient.ClientOption) (*APIClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = apiTimeout
	}

	tracer := otel.Tracer(tracerName)

	options := append([]httpclient.ClientOption{
		httpclient.WithProviderName("raydium-api"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithRateLimiter(ratelimit.New(cfg.RequestsPerMinute)),
		httpclient.WithTraceOptions(tracer),
	}, opts...)

	client, err := httpclient.NewInstrumentedClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: client,
		config: cfg,
		logger: log,
		tracer: tracer,
		cb:     circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig("raydium-api")),
	}, nil
}

// get performs one GET through the breaker and checks the success flag.
func get[T any](ctx context.Context, c *APIClient, endpoint string, params map[string]string) (T, error) {
	var out envelope[T]

	_, err := c.cb.Execute(func() (struct{}, error) {
		_, err := c.client.NewRequestWithOptions(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", endpoint)),
			httpclient.WithResponseErrorHandler(apiErrorHandler),
		).
			SetQueryParams(params).
			SetResult(&out).
			Get(ctx, endpoint)
		if err != nil {
			return struct{}{}, err
		}
		if !out.Success {
			return struct{}{}, fmt.Errorf("raydium api: %s", out.Msg)
		}
		return struct{}{}, nil
	})
	if err != nil {
		var zero T
		return zero, apperror.External(apperror.CodeRegistryAPIError, endpoint, err)
	}
	return out.Data, nil
}

// PoolIDByPair returns the deepest pool for the pair, "" when none.
func (c *APIClient) PoolIDByPair(ctx context.Context, mintA, mintB string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "raydium.api.pool_id_by_pair")
	defer span.End()

	pools, err := c.poolsByPair(ctx, mintA, mintB, 1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return "", err
	}
	if len(pools) == 0 {
		return "", nil
	}

	span.SetAttributes(attribute.String("pool_id", pools[0].ID))
	return pools[0].ID, nil
}

// PoolsByPair returns pools for the pair, deepest first.
func (c *APIClient) PoolsByPair(ctx context.Context, mintA, mintB string) ([]domain.RegistryPool, error) {
	ctx, span := c.tracer.Start(ctx, "raydium.api.pools_by_pair")
	defer span.End()

	pools, err := c.poolsByPair(ctx, mintA, mintB, 10)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}
	return pools, nil
}

func (c *APIClient) poolsByPair(ctx context.Context, mintA, mintB string, pageSize int) ([]domain.RegistryPool, error) {
	list, err := get[apiPoolList](ctx, c, poolByMintEndpoint, map[string]string{
		"mint1":         mintA,
		"mint2":         mintB,
		"poolType":      "all",
		"poolSortField": "liquidity",
		"sortType":      "desc",
		"pageSize":      fmt.Sprint(pageSize),
		"page":          "1",
	})
	if err != nil {
		return nil, err
	}
	return toRegistryPools(list.Data), nil
}

// PoolsByID returns registry entries for ids; unknown ids are omitted.
func (c *APIClient) PoolsByID(ctx context.Context, ids ...string) ([]domain.RegistryPool, error) {
	ctx, span := c.tracer.Start(ctx, "raydium.api.pools_by_id",
		trace.WithAttributes(attribute.StringSlice("ids", ids)),
	)
	defer span.End()

	infos, err := get[[]*apiPoolInfo](ctx, c, poolInfoEndpoint, map[string]string{
		"ids": strings.Join(ids, ","),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}
	return toRegistryPools(infos), nil
}

// PoolKeys returns the static keys of pool id.
func (c *APIClient) PoolKeys(ctx context.Context, id string) (*domain.PoolKeys, error) {
	ctx, span := c.tracer.Start(ctx, "raydium.api.pool_keys",
		trace.WithAttributes(attribute.String("pool_id", id)),
	)
	defer span.End()

	keys, err := get[[]*apiPoolKeys](ctx, c, poolKeysEndpoint, map[string]string{"ids": id})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}

	for _, k := range keys {
		if k == nil || k.ID != id {
			continue
		}
		out := &domain.PoolKeys{
			ID:        k.ID,
			ProgramID: k.ProgramID,
			MintA:     k.MintA.toDomain(),
			MintB:     k.MintB.toDomain(),
			VaultA:    k.Vault.A,
			VaultB:    k.Vault.B,
		}
		if k.Config != nil {
			out.TickSpacing = k.Config.TickSpacing
			out.TradeFeeRate = k.Config.TradeFeeRate
			out.ProtocolFeeRate = k.Config.ProtocolFeeRate
		}
		return out, nil
	}

	return nil, apperror.NotFound(apperror.CodeNotFound, "pool keys "+id)
}

func toRegistryPools(infos []*apiPoolInfo) []domain.RegistryPool {
	out := make([]domain.RegistryPool, 0, len(infos))
	for _, p := range infos {
		if p == nil || p.ID == "" {
			continue
		}
		out = append(out, domain.RegistryPool{
			ID:          p.ID,
			Type:        p.Type,
			ProgramID:   p.ProgramID,
			MintA:       p.MintA.toDomain(),
			MintB:       p.MintB.toDomain(),
			MintAmountA: p.MintAmountA,
			MintAmountB: p.MintAmountB,
			FeeRate:     p.FeeRate,
			TVL:         p.TVL,
		})
	}
	return out
}

func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", statusCode, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ app.PoolRegistry   = (*APIClient)(nil)
	_ app.PoolKeysSource = (*APIClient)(nil)
)
