package scripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/db/model"
	"github.com/algem/liquid-staking-service/internal/mocks"
	"github.com/algem/liquid-staking-service/internal/queue"
	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

var (
	admin = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func newServices(t *testing.T, faucet bool) *services.Services {
	t.Helper()
	dbClient := mocks.NewDBClient(t)
	dbClient.On("LoadLedgerState", mock.Anything).
		Return(nil, &db.NotFoundError{Key: model.LedgerStateID}).Once()
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := &config.Config{
		Server: config.ServerConfig{SS58Prefix: 5},
		Ledger: config.LedgerConfig{Faucet: faucet},
	}
	genesis := &types.GenesisParams{
		Admin:              admin.Hex(),
		DistributorAddress: "0x00000000000000000000000000000000000000d1",
		TokenAddress:       "0x0000000000000000000000000000000000000070",
		EngineAddress:      "0x0000000000000000000000000000000000000015",
		DntName:            "nASTR",
		UtilityName:        "LiquidStaking",
		MinStakeAmount:     "5",
		PartnersLimit:      2,
		Balances: map[string]string{
			admin.Hex(): "10000",
		},
	}
	svc, err := services.NewWithDbClient(context.Background(), cfg, genesis, dbClient, stakingmodule.NewSimulated(0, 2, 0), nil)
	require.NoError(t, err)
	return svc
}

func TestConvertAddr(t *testing.T) {
	var out bytes.Buffer
	err := ConvertAddr(&out, []string{bob.Hex()}, 5)
	require.NoError(t, err)

	want, err := utils.EvmToSS58(bob, 5)
	require.NoError(t, err)
	assert.Equal(t, bob.Hex()+" "+want+"\n", out.String())

	err = ConvertAddr(&out, []string{"not-an-address"}, 5)
	assert.Error(t, err)
}

func TestExportStakersThenShoot(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, false)
	require.Nil(t, svc.Stake(ctx, admin, sdkmath.NewInt(100)))

	path := filepath.Join(t.TempDir(), "stakers.json")
	require.NoError(t, ExportStakers(ctx, svc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stakers []services.StakerPublic
	require.NoError(t, json.Unmarshal(data, &stakers))
	require.Len(t, stakers, 1)
	assert.Equal(t, admin.Hex(), stakers[0].Address)

	shotQueue := mocks.NewQueueClient(t)
	shotQueue.On("SendMessage", mock.Anything, mock.MatchedBy(func(body string) bool {
		var event client.EraShotEvent
		if err := json.Unmarshal([]byte(body), &event); err != nil {
			return false
		}
		return event.User == admin.Hex() && event.Utility == "LiquidStaking" && event.Dnt == "nASTR"
	})).Return(nil).Once()

	require.NoError(t, Shoot(ctx, svc, shotQueue, path, "", ""))
}

func TestGiveMoney(t *testing.T) {
	ctx := context.Background()

	disabled := newServices(t, false)
	assert.Error(t, GiveMoney(ctx, disabled, bob.Hex(), "10"))

	svc := newServices(t, true)
	assert.Error(t, GiveMoney(ctx, svc, bob.Hex(), "-1"))
	require.NoError(t, GiveMoney(ctx, svc, bob.Hex(), "10"))

	balances, apiErr := svc.Balances(ctx, bob)
	require.Nil(t, apiErr)
	assert.Equal(t, "10", balances.Native)
}

func TestReplayUnprocessableMessages(t *testing.T) {
	ctx := context.Background()
	dbClient := mocks.NewDBClient(t)
	syncQueue := mocks.NewQueueClient(t)
	shotQueue := mocks.NewQueueClient(t)
	queues := &queue.Queues{EraSyncQueueClient: syncQueue, EraShotQueueClient: shotQueue}

	syncBody := `{"event_type":"era_sync","era":3}`
	shotBody := `{"event_type":"era_shot","user":"0x0000000000000000000000000000000000000b0b","utility":"LiquidStaking","dnt":"nASTR"}`
	dbClient.On("FindUnprocessableMessages", mock.Anything).Return([]model.UnprocessableMessageDocument{
		{MessageBody: syncBody, Receipt: "r1"},
		{MessageBody: shotBody, Receipt: "r2"},
	}, nil).Once()
	syncQueue.On("SendMessage", mock.Anything, syncBody).Return(nil).Once()
	shotQueue.On("SendMessage", mock.Anything, shotBody).Return(nil).Once()
	dbClient.On("DeleteUnprocessableMessage", mock.Anything, "r1").Return(nil).Once()
	dbClient.On("DeleteUnprocessableMessage", mock.Anything, "r2").Return(nil).Once()

	result, err := ReplayUnprocessableMessages(ctx, queues, dbClient)
	require.NoError(t, err)
	assert.Equal(t, ReplayResult{Replayed: 2}, result)
}

func TestReplaySkipsMessagesItCannotRoute(t *testing.T) {
	ctx := context.Background()
	dbClient := mocks.NewDBClient(t)
	dbClient.On("FindUnprocessableMessages", mock.Anything).Return([]model.UnprocessableMessageDocument{
		{MessageBody: `{"event_type":"mystery"}`, Receipt: "r1"},
		{MessageBody: `not json`, Receipt: "r2"},
	}, nil).Once()

	result, err := ReplayUnprocessableMessages(ctx, &queue.Queues{}, dbClient)
	require.NoError(t, err)
	assert.Equal(t, ReplayResult{Skipped: 2}, result)
	dbClient.AssertNotCalled(t, "DeleteUnprocessableMessage", mock.Anything, mock.Anything)
}

func TestReplayStopsWhenRequeueFails(t *testing.T) {
	ctx := context.Background()
	dbClient := mocks.NewDBClient(t)
	syncQueue := mocks.NewQueueClient(t)
	body := `{"event_type":"era_sync","era":3}`
	dbClient.On("FindUnprocessableMessages", mock.Anything).Return([]model.UnprocessableMessageDocument{
		{MessageBody: body, Receipt: "r1"},
		{MessageBody: body, Receipt: "r2"},
	}, nil).Once()
	syncQueue.On("SendMessage", mock.Anything, body).Return(errors.New("broker down")).Once()

	result, err := ReplayUnprocessableMessages(ctx, &queue.Queues{EraSyncQueueClient: syncQueue}, dbClient)
	require.ErrorContains(t, err, "r1")
	assert.Zero(t, result.Replayed)

	empty := mocks.NewDBClient(t)
	empty.On("FindUnprocessableMessages", mock.Anything).Return(nil, nil).Once()
	result, err = ReplayUnprocessableMessages(ctx, &queue.Queues{}, empty)
	require.NoError(t, err)
	assert.Equal(t, ReplayResult{}, result)
}
