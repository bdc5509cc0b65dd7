package liquidstaking_test

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/bank"
	"github.com/algem/liquid-staking-service/internal/ledger/distributor"
	"github.com/algem/liquid-staking-service/internal/ledger/dnt"
	"github.com/algem/liquid-staking-service/internal/ledger/liquidstaking"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
)

const (
	dntName         = "nASTR"
	utilityName     = "LiquidStaking"
	unbondingPeriod = 2
)

var (
	admin      = common.HexToAddress("0xad")
	keeper     = common.HexToAddress("0x4ee9e4")
	tokenAddr  = common.HexToAddress("0x70")
	engineAddr = common.HexToAddress("0x15")
	alice      = common.HexToAddress("0xa11ce")
	bob        = common.HexToAddress("0xb0b")
	carol      = common.HexToAddress("0xca401")
)

type fixture struct {
	ctx    context.Context
	engine *liquidstaking.Engine
	distr  *distributor.Distributor
	token  *dnt.Token
	bank   *bank.Bank
	module *stakingmodule.Simulated
	events *ledger.EventLog
}

type fixtureOpts struct {
	feeBps uint64
	offset sdkmath.Int
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	ctx := context.Background()
	distr := distributor.New(admin)
	token, err := dnt.New(dntName, tokenAddr, admin, distr)
	require.NoError(t, err)
	b := bank.New()
	module := stakingmodule.NewSimulated(0, unbondingPeriod, 0)
	engine := liquidstaking.New(engineAddr, admin)
	events := &ledger.EventLog{}
	token.SetEventLog(events)

	require.NoError(t, distr.AddDnt(admin, dntName, token))
	_, err = distr.AddUtility(admin, utilityName)
	require.NoError(t, err)
	require.NoError(t, distr.SetLiquidStaking(admin, engineAddr, engine))
	require.NoError(t, distr.AddManager(admin, tokenAddr))
	require.NoError(t, distr.AddManager(admin, engineAddr))
	require.NoError(t, token.TransferOwnership(admin, engineAddr))

	offset := opts.offset
	if offset.IsNil() {
		offset = sdkmath.OneInt()
	}
	require.NoError(t, engine.Initialize(ctx, admin, liquidstaking.Params{
		DntName:               dntName,
		UtilityName:           utilityName,
		MinStakeAmount:        sdkmath.NewInt(5),
		RevenueFeeBps:         opts.feeBps,
		RewardPrecisionOffset: offset,
	}, liquidstaking.Deps{
		Distributor: distr,
		Token:       token,
		Bank:        b,
		Module:      module,
		Events:      events,
	}))
	require.NoError(t, engine.AddManager(admin, keeper))

	for _, addr := range []common.Address{admin, alice, bob, carol} {
		require.NoError(t, b.Credit(addr, sdkmath.NewInt(10_000)))
	}
	return &fixture{ctx: ctx, engine: engine, distr: distr, token: token, bank: b, module: module, events: events}
}

// nextEra advances the module by one era paying reward and syncs it.
func (f *fixture) nextEra(t *testing.T, reward int64) {
	t.Helper()
	era, err := f.module.CurrentEra(f.ctx)
	require.NoError(t, err)
	f.module.SetEraReward(era+1, sdkmath.NewInt(reward))
	f.module.AdvanceEra()
	_, err = f.engine.Sync(f.ctx, keeper, era+1)
	require.NoError(t, err)
}

func (f *fixture) rewards(user common.Address) string {
	return f.engine.GetUserRewards(user).String()
}

func TestInitializeOnce(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	err := f.engine.Initialize(f.ctx, admin, liquidstaking.Params{DntName: dntName, UtilityName: utilityName},
		liquidstaking.Deps{Distributor: f.distr, Token: f.token, Bank: f.bank, Module: f.module})
	assert.ErrorIs(t, err, ledger.ErrAlreadyInitialized)

	fresh := liquidstaking.New(engineAddr, admin)
	assert.ErrorIs(t, fresh.Stake(f.ctx, alice, sdkmath.NewInt(10)), ledger.ErrNotInitialized)
}

func TestStake(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{"zero amount", 0, ledger.ErrInvalidAmount},
		{"below minimum", 4, ledger.ErrInvalidAmount},
		{"more than wallet", 10_001, ledger.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(tt.amount)), tt.wantErr)
			assert.True(t, f.module.Bonded().IsZero())
			assert.Equal(t, "10000", f.bank.BalanceOf(alice).String())
		})
	}

	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	assert.Equal(t, "100", f.token.BalanceOf(alice).String())
	assert.Equal(t, "100", f.distr.GetUserDntBalanceInUtil(alice, utilityName, dntName).String())
	assert.Equal(t, "9900", f.bank.BalanceOf(alice).String())
	assert.Equal(t, "100", f.module.Bonded().String())
	assert.Equal(t, "100", f.engine.Pools().Bonded.String())
	assert.Equal(t, []common.Address{alice}, f.engine.GetStakers())

	events := f.events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ledger.EventStaked, events[0].Type)
	assert.Equal(t, alice, events[0].User)
	assert.Equal(t, "100", events[0].Amount.String())
}

func TestStakeToInactiveUtility(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.AddDapp(admin, "Dapp", carol))

	require.NoError(t, f.engine.StakeTo(f.ctx, alice,
		[]string{utilityName, "Dapp"}, []sdkmath.Int{sdkmath.NewInt(30), sdkmath.NewInt(70)}))
	assert.Equal(t, "70", f.distr.GetUserDntBalanceInUtil(alice, "Dapp", dntName).String())

	require.NoError(t, f.engine.SetDappStatus(keeper, "Dapp", false))
	err := f.engine.StakeTo(f.ctx, alice, []string{"Dapp"}, []sdkmath.Int{sdkmath.NewInt(10)})
	assert.ErrorIs(t, err, ledger.ErrUtilityInactive)

	// Inactive utilities can still be left.
	require.NoError(t, f.engine.FillUnstakingPool(admin, sdkmath.NewInt(100)))
	assert.NoError(t, f.engine.Unstake(f.ctx, alice, []string{"Dapp"}, []sdkmath.Int{sdkmath.NewInt(70)}, true))

	err = f.engine.StakeTo(f.ctx, alice, []string{"Dapp"}, []sdkmath.Int{})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestConservationAcrossOperations(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.AddDapp(admin, "Dapp", carol))
	require.NoError(t, f.engine.FillUnstakingPool(admin, sdkmath.NewInt(1_000)))

	steps := []func() error{
		func() error {
			return f.engine.StakeTo(f.ctx, alice, []string{utilityName, "Dapp"},
				[]sdkmath.Int{sdkmath.NewInt(31), sdkmath.NewInt(70)})
		},
		func() error { return f.engine.Stake(f.ctx, bob, sdkmath.NewInt(10)) },
		func() error { return f.token.Transfer(alice, bob, sdkmath.NewInt(33)) },
		func() error { return f.token.Transfer(bob, carol, sdkmath.NewInt(7)) },
		func() error {
			return f.engine.Unstake(f.ctx, bob, []string{"Dapp"}, []sdkmath.Int{sdkmath.NewInt(5)}, true)
		},
		func() error {
			return f.engine.Unstake(f.ctx, alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(3)}, false)
		},
		func() error { return f.token.Transfer(carol, alice, sdkmath.NewInt(7)) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		require.NoError(t, f.distr.CheckConservation(dntName), "step %d", i)
		for _, user := range []common.Address{alice, bob, carol} {
			sum := sdkmath.ZeroInt()
			for _, u := range f.distr.ListUtilities() {
				sum = sum.Add(f.distr.GetUserDntBalanceInUtil(user, u.Name, dntName))
			}
			assert.Equal(t, f.token.BalanceOf(user).String(), sum.String(), "step %d user %s", i, user.Hex())
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t, fixtureOpts{feeBps: liquidstaking.DefaultRevenueFeeBps})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(1_000)))
	f.nextEra(t, 1_000)

	pools := f.engine.Pools()
	rewards := f.rewards(alice)
	acc := f.engine.AccRewardPerToken()

	_, err := f.engine.Sync(f.ctx, keeper, 1)
	assert.ErrorIs(t, err, ledger.ErrStaleEra)
	_, err = f.engine.Sync(f.ctx, keeper, 0)
	assert.ErrorIs(t, err, ledger.ErrStaleEra)

	assert.Equal(t, pools, f.engine.Pools())
	assert.Equal(t, rewards, f.rewards(alice))
	assert.True(t, acc.Equal(f.engine.AccRewardPerToken()))
	assert.Equal(t, uint64(1), f.engine.LastSyncedEra())
}

func TestSyncRejects(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.module.AdvanceEra()

	_, err := f.engine.Sync(f.ctx, alice, 1)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	_, err = f.engine.Sync(f.ctx, keeper, 2)
	assert.ErrorIs(t, err, ledger.ErrInvalidEra)
	assert.Equal(t, uint64(0), f.engine.LastSyncedEra())
}

func TestSyncCatchesUpInOrder(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	for era := uint64(1); era <= 3; era++ {
		f.module.SetEraReward(era, sdkmath.NewInt(int64(era*100)))
		f.module.AdvanceEra()
	}

	synced, err := f.engine.Sync(f.ctx, keeper, 3)
	require.NoError(t, err)
	require.Len(t, synced, 3)
	for i, info := range synced {
		assert.Equal(t, uint64(i+1), info.Era)
		assert.Equal(t, sdkmath.NewInt(int64((i+1)*100)).String(), info.Reward.String())
	}
	assert.Equal(t, "600", f.rewards(alice))
	assert.Equal(t, uint64(3), f.engine.LastSyncedEra())
}

func TestEqualStakersReceiveEqualRewards(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(1_000)))
	require.NoError(t, f.engine.Stake(f.ctx, bob, sdkmath.NewInt(1_000)))

	f.nextEra(t, 1_000)
	f.nextEra(t, 1_000)

	assert.Equal(t, "1000", f.rewards(alice))
	assert.Equal(t, f.rewards(alice), f.rewards(bob))
}

func TestPrecisionOffsetCarriesDust(t *testing.T) {
	offset := sdkmath.NewIntWithDecimal(1, 15)
	f := newFixture(t, fixtureOpts{offset: offset})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(1_000)))
	require.NoError(t, f.engine.Stake(f.ctx, bob, sdkmath.NewInt(1_000)))

	// 501 over 2000 tokens is 250.5e15 per token, truncated to 250e15.
	f.nextEra(t, 501)
	assert.Equal(t, "250", f.rewards(alice))
	assert.Equal(t, "250", f.rewards(bob))
	assert.Equal(t, "1", f.engine.Dust().String())

	// The carried unit makes 502 distributable: 251 each.
	f.nextEra(t, 501)
	assert.Equal(t, "501", f.rewards(alice))
	assert.Equal(t, "501", f.rewards(bob))
	assert.True(t, f.engine.Dust().IsZero())

	eras := f.engine.DrainHistory().Eras
	require.Len(t, eras, 2)
	assert.Equal(t, uint64(2), eras[1].Era)
	assert.Equal(t, "502", eras[1].Distributed.String())
}

func TestRewardSplitFollowsAllocation(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	require.NoError(t, f.engine.Stake(f.ctx, bob, sdkmath.NewInt(200)))
	require.NoError(t, f.engine.Stake(f.ctx, carol, sdkmath.NewInt(300)))

	f.nextEra(t, 1_001)

	eras := f.engine.DrainHistory().Eras
	require.Len(t, eras, 1)
	info := eras[0]
	sum := sdkmath.ZeroInt()
	for _, user := range []common.Address{alice, bob, carol} {
		sum = sum.Add(f.engine.GetUserRewards(user))
	}
	assert.True(t, sum.LTE(info.Distributed))
	assert.True(t, sum.GTE(info.Distributed.SubRaw(3)), "sum %s distributed %s", sum, info.Distributed)
	assert.Equal(t, "166", f.rewards(alice))
	assert.Equal(t, "333", f.rewards(bob))
	assert.Equal(t, "500", f.rewards(carol))
}

func TestRevenueFee(t *testing.T) {
	f := newFixture(t, fixtureOpts{feeBps: liquidstaking.DefaultRevenueFeeBps})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(1_000)))
	f.nextEra(t, 10_000)

	pools := f.engine.Pools()
	assert.Equal(t, "900", pools.Revenue.String())
	assert.Equal(t, "9100", pools.Reward.String())
	assert.Equal(t, "9100", f.rewards(alice))

	assert.ErrorIs(t, f.engine.WithdrawRevenue(alice, alice, sdkmath.NewInt(1)), ledger.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.WithdrawRevenue(admin, carol, sdkmath.NewInt(901)), ledger.ErrInsufficientPoolLiquidity)
	require.NoError(t, f.engine.WithdrawRevenue(admin, carol, sdkmath.NewInt(900)))
	assert.Equal(t, "10900", f.bank.BalanceOf(carol).String())
	assert.True(t, f.engine.Pools().Revenue.IsZero())
}

func TestTransferSettlesRewardsBeforeMoving(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	f.nextEra(t, 1_000)

	require.NoError(t, f.token.Transfer(alice, bob, sdkmath.NewInt(50)))
	assert.Equal(t, "1000", f.rewards(alice))
	assert.Equal(t, "0", f.rewards(bob))

	f.nextEra(t, 1_000)
	assert.Equal(t, "1500", f.rewards(alice))
	assert.Equal(t, "500", f.rewards(bob))
}

func TestClaim(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	f.nextEra(t, 1_000)
	f.events.Drain()

	err := f.engine.Claim(alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(1), sdkmath.NewInt(2)})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	err = f.engine.Claim(alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(1_001)})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, "1000", f.rewards(alice))

	require.NoError(t, f.engine.Claim(alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(400)}))
	assert.Equal(t, "600", f.rewards(alice))
	assert.Equal(t, "10300", f.bank.BalanceOf(alice).String())
	assert.Equal(t, "600", f.engine.Pools().Reward.String())

	claimed, err := f.engine.ClaimAll(alice)
	require.NoError(t, err)
	assert.Equal(t, "600", claimed.String())
	assert.Equal(t, "0", f.rewards(alice))
	assert.Equal(t, "1000", f.engine.Position(alice, utilityName).Claimed.String())

	_, err = f.engine.ClaimAll(alice)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	events := f.events.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, ledger.EventClaimed, events[1].Type)
	assert.Equal(t, "600", events[1].Amount.String())
}

func TestImmediateAndDelayedUnstake(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))

	err := f.engine.Unstake(f.ctx, alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(50)}, true)
	assert.ErrorIs(t, err, ledger.ErrInsufficientPoolLiquidity)
	assert.Equal(t, "100", f.token.BalanceOf(alice).String())

	require.NoError(t, f.engine.FillUnstakingPool(admin, sdkmath.NewInt(500)))
	require.NoError(t, f.engine.Unstake(f.ctx, alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(50)}, true))
	assert.Equal(t, "450", f.engine.Pools().Unstaking.String())
	assert.Equal(t, "9950", f.bank.BalanceOf(alice).String())
	assert.Equal(t, "50", f.token.BalanceOf(alice).String())

	require.NoError(t, f.engine.Unstake(f.ctx, alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(50)}, false))
	assert.True(t, f.token.BalanceOf(alice).IsZero())
	withdrawals := f.engine.Withdrawals(alice)
	require.Len(t, withdrawals, 1)
	id := withdrawals[0].ID
	assert.Equal(t, uint64(unbondingPeriod), withdrawals[0].CompletionEra)

	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, alice, id), ledger.ErrNotMatured)
	f.nextEra(t, 0)
	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, alice, id), ledger.ErrNotMatured)
	f.nextEra(t, 0)

	pools := f.engine.Pools()
	assert.Equal(t, "50", pools.Unbonded.String())
	assert.Equal(t, "500", pools.Unstaking.String())
	assert.True(t, pools.Unbonding.IsZero())

	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, bob, id), ledger.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, alice, id+1), ledger.ErrNotFound)
	require.NoError(t, f.engine.Withdraw(f.ctx, alice, id))
	assert.Equal(t, "10000", f.bank.BalanceOf(alice).String())
	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, alice, id), ledger.ErrAlreadyFulfilled)
}

func TestWithdrawNeedsUnbondedLiquidity(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	require.NoError(t, f.engine.Unstake(f.ctx, alice, []string{utilityName}, []sdkmath.Int{sdkmath.NewInt(100)}, false))

	// Matured on the module but not yet synced.
	f.module.AdvanceEra()
	f.module.AdvanceEra()
	assert.ErrorIs(t, f.engine.Withdraw(f.ctx, alice, 0), ledger.ErrInsufficientPoolLiquidity)

	require.NoError(t, f.engine.FillUnbondedPool(admin, sdkmath.NewInt(100)))
	assert.NoError(t, f.engine.Withdraw(f.ctx, alice, 0))
}

func TestPartners(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	partner := common.HexToAddress("0x9a47")

	require.NoError(t, f.engine.SetPartnersLimit(admin, 1))
	require.NoError(t, f.engine.AddPartner(admin, partner))
	assert.ErrorIs(t, f.engine.AddPartner(admin, carol), ledger.ErrLimitExceeded)
	assert.ErrorIs(t, f.engine.SetPartnersLimit(admin, 0), ledger.ErrLimitExceeded)
	assert.ErrorIs(t, f.engine.AddPartner(alice, carol), ledger.ErrUnauthorized)

	f.module.AdvanceEra()
	_, err := f.engine.Sync(f.ctx, partner, 1)
	require.NoError(t, err)

	require.NoError(t, f.engine.RemovePartner(admin, partner))
	assert.ErrorIs(t, f.engine.RemovePartner(admin, partner), ledger.ErrNotFound)
	assert.Empty(t, f.engine.Partners())
}

func TestSetMinStakeAmount(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	assert.ErrorIs(t, f.engine.SetMinStakeAmount(alice, sdkmath.NewInt(1)), ledger.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.SetMinStakeAmount(admin, sdkmath.ZeroInt()), ledger.ErrInvalidAmount)
	require.NoError(t, f.engine.SetMinStakeAmount(admin, sdkmath.NewInt(50)))
	assert.ErrorIs(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(49)), ledger.ErrInvalidAmount)
}

func TestEraShotAndSyncHarvest(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Stake(f.ctx, alice, sdkmath.NewInt(100)))
	f.nextEra(t, 300)

	_, err := f.engine.EraShot(bob, alice, utilityName, dntName)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	_, err = f.engine.EraShot(keeper, alice, utilityName, "xASTR")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	shot, err := f.engine.EraShot(keeper, alice, utilityName, dntName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), shot.Era)
	assert.Equal(t, "100", shot.Balance.String())
	assert.Equal(t, "300", shot.Rewards.String())
	shots := f.engine.DrainHistory().EraShots
	require.Len(t, shots, 1)
	assert.Equal(t, alice, shots[0].User)
	assert.Equal(t, utilityName, shots[0].Utility)
	assert.Equal(t, shot, shots[0].EraShot)
	assert.Empty(t, f.engine.DrainHistory().EraShots)

	f.nextEra(t, 100)
	require.NoError(t, f.engine.SyncHarvest(alice, alice, []string{utilityName}))
	assert.Equal(t, "400", f.engine.Position(alice, utilityName).Accrued.String())
	assert.Equal(t, "400", f.rewards(alice))
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t, fixtureOpts{feeBps: 500})
	require.NoError(t, f.engine.AddDapp(admin, "Dapp", carol))
	require.NoError(t, f.engine.StakeTo(f.ctx, alice, []string{utilityName, "Dapp"},
		[]sdkmath.Int{sdkmath.NewInt(40), sdkmath.NewInt(60)}))
	f.nextEra(t, 1_000)
	require.NoError(t, f.engine.Unstake(f.ctx, alice, []string{"Dapp"}, []sdkmath.Int{sdkmath.NewInt(10)}, false))

	raw, err := json.Marshal(f.engine.Export())
	require.NoError(t, err)
	var state liquidstaking.State
	require.NoError(t, json.Unmarshal(raw, &state))

	restored := liquidstaking.Import(state, liquidstaking.Deps{
		Distributor: f.distr, Token: f.token, Bank: f.bank, Module: f.module,
	})
	assert.Equal(t, f.rewards(alice), restored.GetUserRewards(alice).String())
	want, got := f.engine.Withdrawals(alice), restored.Withdrawals(alice)
	require.Len(t, got, len(want))
	assert.Equal(t, want[0].Amount.String(), got[0].Amount.String())
	assert.Equal(t, want[0].CompletionEra, got[0].CompletionEra)
	assert.Equal(t, f.engine.LastSyncedEra(), restored.LastSyncedEra())
	assert.Equal(t, f.engine.Pools().Unbonding.String(), restored.Pools().Unbonding.String())
	assert.Equal(t, f.engine.Dapps(), restored.Dapps())
	assert.True(t, restored.ACL().Has(ledger.RoleManager, keeper))
}

func TestStateSizeDoesNotGrowWithEras(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	for i := int64(1); i <= 300; i++ {
		staker := common.BigToAddress(big.NewInt(0x10000 + i))
		require.NoError(t, f.bank.Credit(staker, sdkmath.NewInt(1_000)))
		require.NoError(t, f.engine.Stake(f.ctx, staker, sdkmath.NewInt(100)))
	}
	f.nextEra(t, 1_000)
	settled := exportedSize(t, f)

	for i := 0; i < 100; i++ {
		f.nextEra(t, 1_000)
	}
	assert.Len(t, f.engine.DrainHistory().Eras, 101)
	// only the era counters and accumulator change width
	assert.InDelta(t, settled, exportedSize(t, f), 64)
}

func exportedSize(t *testing.T, f *fixture) int {
	t.Helper()
	engine, err := json.Marshal(f.engine.Export())
	require.NoError(t, err)
	token, err := json.Marshal(f.token.Export())
	require.NoError(t, err)
	return len(engine) + len(token)
}
