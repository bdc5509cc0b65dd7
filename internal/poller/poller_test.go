package poller_test

import (
	"context"
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
	"github.com/algem/liquid-staking-service/internal/poller"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
)

var keeper = common.HexToAddress("0x000000000000000000000000000000000000004e")

// remoteModule hides the simulated type so the poller treats it like the
// sidecar client.
type remoteModule struct {
	stakingmodule.Module
}

func newServices(t *testing.T, module stakingmodule.Module) *services.Services {
	t.Helper()
	dbClient := new(mocks.DBClient)
	dbClient.On("LoadLedgerState", mock.Anything).
		Return(nil, &db.NotFoundError{Key: model.LedgerStateID}).Once()
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := &config.Config{Ledger: config.LedgerConfig{Keeper: keeper.Hex()}}
	genesis := &types.GenesisParams{
		Admin:              "0x00000000000000000000000000000000000000ad",
		DistributorAddress: "0x00000000000000000000000000000000000000d1",
		TokenAddress:       "0x0000000000000000000000000000000000000070",
		EngineAddress:      "0x0000000000000000000000000000000000000015",
		DntName:            "nASTR",
		UtilityName:        "LiquidStaking",
		MinStakeAmount:     "5",
	}
	svc, err := services.NewWithDbClient(context.Background(), cfg, genesis, dbClient, module, nil)
	require.NoError(t, err)
	return svc
}

func TestPollAdvancesSimulatedModule(t *testing.T) {
	sim := stakingmodule.NewSimulated(0, 2, 0)
	svc := newServices(t, sim)
	p := poller.New(svc, sim, nil)

	require.NoError(t, p.Poll(context.Background()))
	require.NoError(t, p.Poll(context.Background()))

	era, err := sim.CurrentEra(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), era)
	assert.Equal(t, uint64(2), svc.LastSyncedEra())
}

func TestPollEnqueuesSyncWhenModuleIsAhead(t *testing.T) {
	sim := stakingmodule.NewSimulated(0, 2, 0)
	module := remoteModule{sim}
	svc := newServices(t, module)

	syncQ := mocks.NewQueueClient(t)
	syncQ.On("GetQueueName").Return("era_sync_queue").Maybe()
	p := poller.New(svc, module, syncQ)

	// Nothing to do while the ledger is caught up.
	require.NoError(t, p.Poll(context.Background()))
	syncQ.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)

	sim.AdvanceEra()
	sim.AdvanceEra()
	syncQ.On("SendMessage", mock.Anything, `{"event_type":"era_sync","era":2}`).Return(nil).Once()
	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, uint64(0), svc.LastSyncedEra())
}

func TestPollSyncsInlineWithoutQueue(t *testing.T) {
	sim := stakingmodule.NewSimulated(0, 2, 0)
	sim.SetEraReward(1, sdkmath.NewInt(7))
	module := remoteModule{sim}
	svc := newServices(t, module)
	p := poller.New(svc, module, nil)

	sim.AdvanceEra()
	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, uint64(1), svc.LastSyncedEra())
}
