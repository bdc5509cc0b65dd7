package stakingmodule_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/clients/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	module "github.com/algem/liquid-staking-service/internal/stakingmodule"
)

var _ module.Module = (*stakingmodule.StakingModuleClient)(nil)

func newClient(t *testing.T, handler http.Handler) *stakingmodule.StakingModuleClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	idx := strings.LastIndex(server.URL, ":")
	return stakingmodule.NewStakingModuleClient(&config.StakingModuleConfig{
		Mode:       config.StakingModuleHTTP,
		Host:       server.URL[:idx],
		Port:       server.URL[idx+1:],
		Timeout:    1000,
		MaxRetries: 3,
	})
}

func TestCurrentEraRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/era", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(stakingmodule.EraResponse{Era: 42})
	}))

	era, err := client.CurrentEra(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), era)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTraceIdIsForwarded(t *testing.T) {
	var got string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(tracing.TraceHeader)
		_ = json.NewEncoder(w).Encode(stakingmodule.EraResponse{Era: 1})
	}))

	ctx := tracing.AttachTracingIntoContext(context.Background(), "")
	_, err := client.CurrentEra(ctx)
	require.NoError(t, err)
	assert.Equal(t, tracing.TraceId(ctx), got)

	_, err = client.CurrentEra(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRateLimitIsRetriedButConflictIsNot(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"bond already pending"}`))
	}))

	err := client.Bond(context.Background(), sdkmath.NewInt(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStakingModule)
	assert.Contains(t, err.Error(), "bond already pending")
	assert.Equal(t, int32(2), calls.Load())
}

func TestBondDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req stakingmodule.AmountRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "10", req.Amount.String())
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"not enough bonded"}`))
	}))

	err := client.Bond(context.Background(), sdkmath.NewInt(10))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStakingModule)
	assert.Contains(t, err.Error(), "not enough bonded")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRewardsAccrued(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rewards/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"era":7,"amount":"123456789000000000000"}`))
	}))

	reward, err := client.RewardsAccrued(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "123456789000000000000", reward.String())

	_, err = client.RewardsAccrued(context.Background(), 8)
	assert.ErrorIs(t, err, ledger.ErrStakingModule)
}
