package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/db/model"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/mocks"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
)

var (
	admin  = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	keeper = common.HexToAddress("0x000000000000000000000000000000000000004e")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{SS58Prefix: 5},
		Ledger: config.LedgerConfig{
			Keeper: keeper.Hex(),
			Faucet: true,
		},
	}
}

func testGenesis() *types.GenesisParams {
	return &types.GenesisParams{
		Admin:              admin.Hex(),
		DistributorAddress: "0x00000000000000000000000000000000000000d1",
		TokenAddress:       "0x0000000000000000000000000000000000000070",
		EngineAddress:      "0x0000000000000000000000000000000000000015",
		DntName:            "nASTR",
		UtilityName:        "LiquidStaking",
		MinStakeAmount:     "5",
		PartnersLimit:      2,
		Dapps: []types.GenesisDapp{
			{Name: "ArthSwap", Address: "0x00000000000000000000000000000000000000a5"},
		},
		Balances: map[string]string{
			admin.Hex(): "10000",
			alice.Hex(): "10000",
			bob.Hex():   "10000",
		},
	}
}

type savedState struct {
	doc     model.LedgerStateDocument
	events  []model.LedgerEventDocument
	records model.LedgerRecords
}

type harness struct {
	ctx       context.Context
	svc       *services.Services
	db        *mocks.DBClient
	publisher *mocks.QueueClient
	module    *stakingmodule.Simulated
	saved     []savedState
}

func (h *harness) last() savedState {
	return h.saved[len(h.saved)-1]
}

// newHarness deploys the genesis ledger against mocked storage. Every save
// succeeds and is recorded.
func newHarness(t *testing.T, configure func(cfg *config.Config)) *harness {
	t.Helper()
	h := &harness{
		ctx:       context.Background(),
		db:        new(mocks.DBClient),
		publisher: new(mocks.QueueClient),
		module:    stakingmodule.NewSimulated(0, 2, 0),
	}
	h.db.On("LoadLedgerState", mock.Anything).
		Return(nil, &db.NotFoundError{Key: model.LedgerStateID}).Once()
	h.db.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			doc := args.Get(1).(*model.LedgerStateDocument)
			records := args.Get(2).(*model.LedgerRecords)
			h.saved = append(h.saved, savedState{doc: *doc, events: records.Events, records: *records})
		}).Return(nil).Maybe()
	h.publisher.On("SendMessage", mock.Anything, mock.Anything).Return(nil).Maybe()
	h.publisher.On("GetQueueName").Return("ledger_event_queue").Maybe()

	cfg := testConfig()
	if configure != nil {
		configure(cfg)
	}
	svc, err := services.NewWithDbClient(h.ctx, cfg, testGenesis(), h.db, h.module, h.publisher)
	require.NoError(t, err)
	h.svc = svc
	return h
}

func amt(v int64) sdkmath.Int {
	return sdkmath.NewInt(v)
}

func nativeOf(t *testing.T, h *harness, user common.Address) string {
	t.Helper()
	b, err := h.svc.Balances(h.ctx, user)
	require.Nil(t, err)
	return b.Native
}

func TestBootstrapSavesGenesisLedger(t *testing.T) {
	h := newHarness(t, nil)

	require.Len(t, h.saved, 1)
	genesis := h.last()
	assert.Equal(t, uint64(1), genesis.doc.Version)
	assert.Equal(t, uint64(0), genesis.doc.EventSeq)
	assert.Empty(t, genesis.events)

	status, err := h.svc.Status(h.ctx)
	require.Nil(t, err)
	assert.Equal(t, "nASTR", status.DntName)
	assert.Contains(t, status.Managers, keeper.Hex())
	assert.False(t, status.Paused)

	dapps := h.svc.Dapps(h.ctx)
	require.Len(t, dapps, 1)
	assert.Equal(t, "ArthSwap", dapps[0].Name)
	assert.Equal(t, "10000", nativeOf(t, h, alice))
}

func TestStakePersistsThenPublishes(t *testing.T) {
	h := newHarness(t, nil)

	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(1000)))

	saved := h.last()
	assert.Equal(t, uint64(2), saved.doc.Version)
	require.Len(t, saved.events, 1)
	assert.Equal(t, string(ledger.EventStaked), saved.events[0].Type)
	assert.Equal(t, uint64(1), saved.events[0].Seq)
	assert.Equal(t, alice.Hex(), saved.events[0].User)
	assert.Equal(t, "1000", saved.events[0].Amount)
	assert.Equal(t, uint64(1), saved.doc.EventSeq)

	h.publisher.AssertCalled(t, "SendMessage", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, `"type":"Staked"`) && strings.Contains(body, `"seq":1`)
	}))
	assert.Equal(t, "1000", h.svc.Pools(h.ctx).Bonded)
	assert.Equal(t, "9000", nativeOf(t, h, alice))
}

func TestFailedSaveRollsBack(t *testing.T) {
	h := newHarness(t, nil)
	h.db.ExpectedCalls = nil
	h.db.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).
		Return(&db.VersionConflictError{Expected: 1}).Once()

	err := h.svc.Stake(h.ctx, alice, amt(1000))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, types.Conflict, err.ErrorCode)

	assert.Equal(t, "10000", nativeOf(t, h, alice))
	assert.Equal(t, "0", h.svc.Pools(h.ctx).Bonded)
	assert.True(t, h.module.Bonded().IsZero())
	h.publisher.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

// remoteModule hides the simulated type so the services treat the module
// like a sidecar whose funds are not part of the saved state.
type remoteModule struct {
	*stakingmodule.Simulated
	unbondDown bool
}

func (m *remoteModule) Unbond(ctx context.Context, amount sdkmath.Int) error {
	if m.unbondDown {
		return errors.New("sidecar unavailable")
	}
	return m.Simulated.Unbond(ctx, amount)
}

func newRemoteServices(t *testing.T, module *remoteModule) (*services.Services, *mocks.DBClient) {
	t.Helper()
	dbClient := new(mocks.DBClient)
	dbClient.On("LoadLedgerState", mock.Anything).
		Return(nil, &db.NotFoundError{Key: model.LedgerStateID}).Once()
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	svc, err := services.NewWithDbClient(context.Background(), testConfig(), testGenesis(), dbClient, module, nil)
	require.NoError(t, err)
	return svc, dbClient
}

func TestFailedSaveUndoesRemoteModuleCalls(t *testing.T) {
	ctx := context.Background()
	module := &remoteModule{Simulated: stakingmodule.NewSimulated(0, 2, 0)}
	svc, dbClient := newRemoteServices(t, module)
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).
		Return(&db.VersionConflictError{Expected: 1}).Once()

	err := svc.Stake(ctx, alice, amt(1000))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, "0", svc.Pools(ctx).Bonded)
	assert.True(t, module.Bonded().IsZero())
	balances, apiErr := svc.Balances(ctx, alice)
	require.Nil(t, apiErr)
	assert.Equal(t, "10000", balances.Native)

	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	require.Nil(t, svc.Stake(ctx, alice, amt(1000)))
	assert.Equal(t, "1000", svc.Pools(ctx).Bonded)
	assert.Equal(t, "1000", module.Bonded().String())
}

func TestFailedCompensationLeavesModuleBonded(t *testing.T) {
	ctx := context.Background()
	module := &remoteModule{Simulated: stakingmodule.NewSimulated(0, 2, 0)}
	svc, dbClient := newRemoteServices(t, module)
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).
		Return(&db.VersionConflictError{Expected: 1}).Once()
	module.unbondDown = true

	err := svc.Stake(ctx, alice, amt(1000))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	// the ledger is rolled back even though the module still holds the bond
	assert.Equal(t, "0", svc.Pools(ctx).Bonded)
	assert.Equal(t, "1000", module.Bonded().String())
}

func TestSavedRecordsCarryErasShotsAndRecipients(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(1000)))
	require.Nil(t, h.svc.Transfer(h.ctx, alice, bob, amt(10)))

	transfer := h.last().events
	require.Len(t, transfer, 1)
	assert.Equal(t, string(ledger.EventTransfer), transfer[0].Type)
	assert.Equal(t, alice.Hex(), transfer[0].User)
	assert.Equal(t, bob.Hex(), transfer[0].To)

	h.module.SetEraReward(1, amt(100))
	_, err := h.svc.SimulateNextEra(h.ctx)
	require.Nil(t, err)
	eras := h.last().records.Eras
	require.Len(t, eras, 1)
	assert.Equal(t, uint64(1), eras[0].Era)
	assert.Equal(t, "100", eras[0].Reward)

	shot, err := h.svc.EraShot(h.ctx, keeper, alice, "LiquidStaking", "nASTR")
	require.Nil(t, err)
	shots := h.last().records.EraShots
	require.Len(t, shots, 1)
	assert.Equal(t, alice.Hex(), shots[0].User)
	assert.Equal(t, "LiquidStaking", shots[0].Utility)
	assert.Equal(t, shot.Balance, shots[0].Balance)
	assert.Empty(t, h.last().records.Eras)
}

func TestLedgerErrorsMapToApiErrors(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(100)))

	tests := []struct {
		name       string
		run        func() *types.Error
		statusCode int
		errorCode  types.ErrorCode
	}{
		{
			"below min stake",
			func() *types.Error { return h.svc.Stake(h.ctx, alice, amt(4)) },
			http.StatusBadRequest, types.ValidationError,
		},
		{
			"sync by stranger",
			func() *types.Error {
				_, err := h.svc.Sync(h.ctx, bob, 0)
				return err
			},
			http.StatusForbidden, types.Forbidden,
		},
		{
			"unknown withdrawal",
			func() *types.Error { return h.svc.Withdraw(h.ctx, alice, 7) },
			http.StatusNotFound, types.NotFound,
		},
		{
			"unknown pool",
			func() *types.Error { return h.svc.FillPool(h.ctx, admin, "bonded", amt(10)) },
			http.StatusNotFound, types.NotFound,
		},
		{
			"duplicate dapp",
			func() *types.Error { return h.svc.AddDapp(h.ctx, admin, "ArthSwap", bob) },
			http.StatusConflict, types.Conflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.NotNil(t, err)
			assert.Equal(t, tt.statusCode, err.StatusCode)
			assert.Equal(t, tt.errorCode, err.ErrorCode)
		})
	}

	require.Nil(t, h.svc.SetPaused(h.ctx, admin, true))
	err := h.svc.Transfer(h.ctx, alice, bob, amt(10))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusLocked, err.StatusCode)
	require.Nil(t, h.svc.SetPaused(h.ctx, admin, false))
	require.Nil(t, h.svc.Transfer(h.ctx, alice, bob, amt(10)))
}

func TestSyncStaleEraIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	before := len(h.saved)

	synced, err := h.svc.Sync(h.ctx, keeper, 0)
	require.Nil(t, err)
	assert.Empty(t, synced)
	assert.Len(t, h.saved, before)

	h.module.SetEraReward(1, amt(50))
	h.module.AdvanceEra()
	synced, err = h.svc.Sync(h.ctx, keeper, 0)
	require.Nil(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, "50", synced[0].Reward)

	synced, err = h.svc.Sync(h.ctx, keeper, 1)
	require.Nil(t, err)
	assert.Empty(t, synced)
}

func TestRewardsClaimAndWithdrawalLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(1000)))

	h.module.SetEraReward(1, amt(100))
	synced, err := h.svc.SimulateNextEra(h.ctx)
	require.Nil(t, err)
	require.Len(t, synced, 1)
	assert.Equal(t, "100", h.svc.Rewards(h.ctx, alice).Total)

	paid, err := h.svc.ClaimAll(h.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "100", paid)
	assert.Equal(t, "9100", nativeOf(t, h, alice))

	require.Nil(t, h.svc.Unstake(h.ctx, alice, []string{"LiquidStaking"}, []sdkmath.Int{amt(500)}, false))
	open, err := h.svc.Withdrawals(h.ctx, alice, "open")
	require.Nil(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, string(types.Unbonding), open[0].State)
	assert.Equal(t, uint64(3), open[0].CompletionEra)

	err = h.svc.Withdraw(h.ctx, alice, 0)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	for i := 0; i < 2; i++ {
		_, err = h.svc.SimulateNextEra(h.ctx)
		require.Nil(t, err)
	}
	balances, err := h.svc.Balances(h.ctx, alice)
	require.Nil(t, err)
	assert.Equal(t, "500", balances.Withdrawable)
	assert.Equal(t, "500", balances.Dnt)

	require.Nil(t, h.svc.Withdraw(h.ctx, alice, 0))
	assert.Equal(t, "9600", nativeOf(t, h, alice))

	open, err = h.svc.Withdrawals(h.ctx, alice, "open")
	require.Nil(t, err)
	assert.Empty(t, open)
	withdrawn, err := h.svc.Withdrawals(h.ctx, alice, "withdrawn")
	require.Nil(t, err)
	assert.Len(t, withdrawn, 1)

	_, err = h.svc.Withdrawals(h.ctx, alice, "lost")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestRestoreFromSavedState(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(1000)))
	require.Nil(t, h.svc.Stake(h.ctx, bob, amt(3000)))
	h.module.SetEraReward(1, amt(400))
	_, err := h.svc.SimulateNextEra(h.ctx)
	require.Nil(t, err)

	saved := h.last()
	dbClient := new(mocks.DBClient)
	dbClient.On("LoadLedgerState", mock.Anything).Return(&saved.doc, nil).Once()
	dbClient.On("SaveLedgerState", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	module := stakingmodule.NewSimulated(0, 2, 0)
	restored, restoreErr := services.NewWithDbClient(h.ctx, testConfig(), nil, dbClient, module, nil)
	require.NoError(t, restoreErr)

	assert.Equal(t, h.svc.Pools(h.ctx), restored.Pools(h.ctx))
	assert.Equal(t, "100", restored.Rewards(h.ctx, alice).Total)
	assert.Equal(t, "300", restored.Rewards(h.ctx, bob).Total)
	assert.Equal(t, "4000", module.Bonded().String())

	stakers, apiErr := restored.Stakers(h.ctx)
	require.Nil(t, apiErr)
	require.Len(t, stakers, 2)
	assert.Equal(t, alice.Hex(), stakers[0].Address)
	assert.NotEmpty(t, stakers[0].Ss58)

	// The next save continues the version and event sequence.
	require.Nil(t, restored.Stake(h.ctx, alice, amt(10)))
	call := dbClient.Calls[len(dbClient.Calls)-1]
	doc := call.Arguments.Get(1).(*model.LedgerStateDocument)
	events := call.Arguments.Get(2).(*model.LedgerRecords).Events
	assert.Equal(t, saved.doc.Version+1, doc.Version)
	require.Len(t, events, 1)
	assert.Equal(t, saved.doc.EventSeq+1, events[0].Seq)
}

func TestTokenSnapshotReadsPastBalances(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.Stake(h.ctx, alice, amt(1000)))

	_, err := h.svc.TokenSnapshot(h.ctx, bob)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)

	id, err := h.svc.TokenSnapshot(h.ctx, admin)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), id)
	require.Nil(t, h.svc.Transfer(h.ctx, alice, bob, amt(400)))

	at, err := h.svc.BalanceAt(h.ctx, alice, id)
	require.Nil(t, err)
	assert.Equal(t, "1000", at.Balance)
	assert.Equal(t, "1000", at.TotalSupply)
	at, err = h.svc.BalanceAt(h.ctx, bob, id)
	require.Nil(t, err)
	assert.Equal(t, "0", at.Balance)

	_, err = h.svc.BalanceAt(h.ctx, alice, id+1)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestGiveMoney(t *testing.T) {
	h := newHarness(t, nil)
	require.Nil(t, h.svc.GiveMoney(h.ctx, bob, amt(5)))
	assert.Equal(t, "10005", nativeOf(t, h, bob))

	disabled := newHarness(t, func(cfg *config.Config) { cfg.Ledger.Faucet = false })
	err := disabled.svc.GiveMoney(disabled.ctx, bob, amt(5))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
	assert.Equal(t, "10000", nativeOf(t, disabled, bob))
}

func TestLoadFailure(t *testing.T) {
	dbClient := new(mocks.DBClient)
	dbClient.On("LoadLedgerState", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := services.NewWithDbClient(
		context.Background(), testConfig(), testGenesis(), dbClient, stakingmodule.NewSimulated(0, 2, 0), nil,
	)
	assert.ErrorContains(t, err, "connection refused")
	dbClient.AssertNotCalled(t, "SaveLedgerState", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveUnprocessableMessages(t *testing.T) {
	h := newHarness(t, nil)
	h.db.On("SaveUnprocessableMessage", mock.Anything, "body", "receipt").Return(errors.New("boom")).Once()

	err := h.svc.SaveUnprocessableMessages(h.ctx, "body", "receipt")
	var apiErr *types.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
