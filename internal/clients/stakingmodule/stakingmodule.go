package stakingmodule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	baseclient "github.com/algem/liquid-staking-service/internal/clients/base"
	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/types"
)

const retryDelay = 400 * time.Millisecond

// StakingModuleClient talks to the staking module sidecar over JSON.
type StakingModuleClient struct {
	config         *config.StakingModuleConfig
	defaultHeaders map[string]string
	httpClient     *http.Client
}

type EraResponse struct {
	Era uint64 `json:"era"`
}

type UnbondingPeriodResponse struct {
	UnbondingPeriod uint64 `json:"unbonding_period"`
}

type AmountRequest struct {
	Amount sdkmath.Int `json:"amount"`
}

type AmountResponse struct {
	Era    uint64      `json:"era"`
	Amount sdkmath.Int `json:"amount"`
}

func NewStakingModuleClient(config *config.StakingModuleConfig) *StakingModuleClient {
	httpClient := &http.Client{}
	headers := map[string]string{}
	return &StakingModuleClient{
		config,
		headers,
		httpClient,
	}
}

// Necessary for the BaseClient interface
func (c *StakingModuleClient) GetBaseURL() string {
	return fmt.Sprintf("%s:%s", c.config.Host, c.config.Port)
}

func (c *StakingModuleClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *StakingModuleClient) GetHttpClient() *http.Client {
	return c.httpClient
}

// retryable reports whether the request may succeed if sent again. Client
// errors are final except timeouts and rate limiting. A conflict from the
// sidecar is final too: bond and unbond are not idempotent.
func retryable(err error) bool {
	var apiErr *types.Error
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return apiErr.StatusCode >= http.StatusInternalServerError
}

func call[I any, R any](
	ctx context.Context, c *StakingModuleClient, method string, opts *baseclient.BaseClientOptions, input *I,
) (*R, error) {
	spanName := fmt.Sprintf("stakingmodule %s %s", method, opts.Path)
	out, err := tracing.WrapWithSpan(ctx, spanName, func() (*R, error) {
		var out *R
		err := retry.Do(func() error {
			resp, err := baseclient.SendRequest[I, R](ctx, c, method, opts, input)
			if err != nil {
				return err
			}
			out = resp
			return nil
		},
			retry.Context(ctx),
			retry.Attempts(c.config.MaxRetries),
			retry.Delay(retryDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(retryable),
			retry.OnRetry(func(n uint, err error) {
				log.Ctx(ctx).Debug().Err(err).
					Uint("attempt", n+1).
					Uint("max_attempts", c.config.MaxRetries).
					Msgf("staking module request %s %s failed", method, opts.Path)
			}),
		)
		return out, err
	})
	if err != nil {
		return nil, errorsmod.Wrapf(ledger.ErrStakingModule, "%s %s: %v", method, opts.Path, err)
	}
	return out, nil
}

func (c *StakingModuleClient) CurrentEra(ctx context.Context) (uint64, error) {
	opts := &baseclient.BaseClientOptions{Path: "/v1/era"}
	resp, err := call[any, EraResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		return 0, err
	}
	return resp.Era, nil
}

func (c *StakingModuleClient) UnbondingPeriod(ctx context.Context) (uint64, error) {
	opts := &baseclient.BaseClientOptions{Path: "/v1/unbonding-period"}
	resp, err := call[any, UnbondingPeriodResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		return 0, err
	}
	return resp.UnbondingPeriod, nil
}

func (c *StakingModuleClient) Bond(ctx context.Context, amount sdkmath.Int) error {
	opts := &baseclient.BaseClientOptions{Path: "/v1/bond"}
	_, err := call[AmountRequest, AmountResponse](ctx, c, http.MethodPost, opts, &AmountRequest{Amount: amount})
	return err
}

func (c *StakingModuleClient) Unbond(ctx context.Context, amount sdkmath.Int) error {
	opts := &baseclient.BaseClientOptions{Path: "/v1/unbond"}
	_, err := call[AmountRequest, AmountResponse](ctx, c, http.MethodPost, opts, &AmountRequest{Amount: amount})
	return err
}

func (c *StakingModuleClient) RewardsAccrued(ctx context.Context, era uint64) (sdkmath.Int, error) {
	opts := &baseclient.BaseClientOptions{
		Path:         fmt.Sprintf("/v1/rewards/%d", era),
		TemplatePath: "/v1/rewards/{era}",
	}
	resp, err := call[any, AmountResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if resp.Era != era {
		return sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrStakingModule, "asked rewards of era %d, got era %d", era, resp.Era)
	}
	return resp.Amount, nil
}
