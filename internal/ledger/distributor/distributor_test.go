package distributor_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/distributor"
)

const dntName = "nASTR"

var (
	admin   = common.HexToAddress("0xad")
	manager = common.HexToAddress("0x3a")
	tokenAd = common.HexToAddress("0x70")
	alice   = common.HexToAddress("0xa11ce")
	bob     = common.HexToAddress("0xb0b")
)

type fakeToken struct {
	addr     common.Address
	balances map[common.Address]sdkmath.Int
}

func (f *fakeToken) Address() common.Address { return f.addr }

func (f *fakeToken) BalanceOf(addr common.Address) sdkmath.Int {
	return ledger.OrZero(f.balances[addr])
}

func (f *fakeToken) TotalSupply() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, b := range f.balances {
		total = total.Add(b)
	}
	return total
}

type change struct {
	user          common.Address
	utility       string
	before, after string
}

type recorder struct {
	changes []change
}

func (r *recorder) OnDistributionChanged(user common.Address, utility, dnt string, before, after sdkmath.Int) {
	r.changes = append(r.changes, change{user, utility, before.String(), after.String()})
}

func setup(t *testing.T, utilities ...string) (*distributor.Distributor, *recorder) {
	t.Helper()
	d := distributor.New(admin)
	require.NoError(t, d.AddManager(admin, manager))
	require.NoError(t, d.AddDnt(admin, dntName, &fakeToken{addr: tokenAd}))
	for _, u := range utilities {
		_, err := d.AddUtility(admin, u)
		require.NoError(t, err)
	}
	rec := &recorder{}
	require.NoError(t, d.SetLiquidStaking(admin, common.HexToAddress("0x15"), rec))
	return d, rec
}

func TestAddUtilityAssignsSequentialIds(t *testing.T) {
	d, _ := setup(t, "LiquidStaking", "Dapp")
	id, err := d.UtilityID("Dapp")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = d.AddUtility(admin, "Dapp")
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	require.NoError(t, d.AddUtilityToDisallowList(admin, "Blocked"))
	_, err = d.AddUtility(admin, "Blocked")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	_, err = d.AddUtility(alice, "Other")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.Len(t, d.ListUtilities(), 2)
}

func TestManagerManagement(t *testing.T) {
	d, _ := setup(t)
	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"non admin cannot add", func() error { return d.AddManager(manager, bob) }, ledger.ErrUnauthorized},
		{"zero address", func() error { return d.AddManager(admin, common.Address{}) }, ledger.ErrInvalidAddress},
		{"duplicate", func() error { return d.AddManager(admin, manager) }, ledger.ErrAlreadyExists},
		{"remove non member", func() error { return d.RemoveManager(admin, bob) }, ledger.ErrNotFound},
		{"change to zero", func() error { return d.ChangeManagerAddress(admin, manager, common.Address{}) }, ledger.ErrInvalidAddress},
		{"change unknown", func() error { return d.ChangeManagerAddress(admin, bob, alice) }, ledger.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}

	require.NoError(t, d.ChangeManagerAddress(admin, manager, bob))
	assert.False(t, d.ACL().Has(ledger.RoleManager, manager))
	assert.True(t, d.ACL().Has(ledger.RoleManager, bob))
}

func TestSetLiquidStakingOnce(t *testing.T) {
	d, _ := setup(t)
	err := d.SetLiquidStaking(admin, common.HexToAddress("0x16"), nil)
	assert.ErrorIs(t, err, ledger.ErrImmutable)
	assert.Equal(t, common.HexToAddress("0x15"), d.LiquidStaking())
}

func TestUpdateDistribution(t *testing.T) {
	d, rec := setup(t, "LiquidStaking")

	err := d.UpdateDistribution(alice, alice, "LiquidStaking", dntName, sdkmath.NewInt(10), distributor.Increase)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = d.UpdateDistribution(manager, alice, "Unknown", dntName, sdkmath.NewInt(10), distributor.Increase)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	err = d.UpdateDistribution(manager, alice, "LiquidStaking", "xASTR", sdkmath.NewInt(10), distributor.Increase)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	err = d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.ZeroInt(), distributor.Increase)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	require.NoError(t, d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(10), distributor.Increase))
	err = d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(11), distributor.Decrease)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	require.NoError(t, d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(4), distributor.Decrease))

	assert.Equal(t, "6", d.GetUserDntBalanceInUtil(alice, "LiquidStaking", dntName).String())
	assert.Equal(t, "6", d.TotalDnt(dntName).String())
	assert.Equal(t, "6", d.TotalDntInUtil("LiquidStaking", dntName).String())
	assert.Equal(t, []change{
		{alice, "LiquidStaking", "0", "10"},
		{alice, "LiquidStaking", "10", "6"},
	}, rec.changes)

	require.NoError(t, d.SetDntStatus(admin, dntName, false))
	err = d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(1), distributor.Increase)
	assert.ErrorIs(t, err, ledger.ErrPaused)
	assert.NoError(t, d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(1), distributor.Decrease))
}

func TestChangeDntAddress(t *testing.T) {
	d, _ := setup(t, "LiquidStaking")
	require.NoError(t, d.UpdateDistribution(manager, alice, "LiquidStaking", dntName, sdkmath.NewInt(6), distributor.Increase))
	moved := &fakeToken{
		addr:     common.HexToAddress("0x71"),
		balances: map[common.Address]sdkmath.Int{alice: sdkmath.NewInt(6)},
	}

	tests := []struct {
		name   string
		caller common.Address
		dnt    string
		token  distributor.TokenRef
		err    error
	}{
		{"nil token", admin, dntName, nil, ledger.ErrInvalidAddress},
		{"zero address", admin, dntName, &fakeToken{}, ledger.ErrInvalidAddress},
		{"unknown dnt", admin, "xASTR", moved, ledger.ErrNotFound},
		{"stranger", alice, dntName, moved, ledger.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.ChangeDntAddress(tt.caller, tt.dnt, tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	dnt, err := d.Dnt(dntName)
	require.NoError(t, err)
	assert.Equal(t, tokenAd, dnt.Address)
	// the old token holds nothing, so conservation only passes once rebound
	require.ErrorIs(t, d.CheckConservation(dntName), ledger.ErrInsufficientBalance)
	require.NoError(t, d.ChangeDntAddress(manager, dntName, moved))
	dnt, err = d.Dnt(dntName)
	require.NoError(t, err)
	assert.Equal(t, moved.addr, dnt.Address)
	assert.True(t, dnt.Active)
	assert.NoError(t, d.CheckConservation(dntName))
}

func TestTransferDistributionProportional(t *testing.T) {
	tests := []struct {
		name   string
		shares []int64
		amount int64
		want   []int64
	}{
		{"even split", []int64{50, 50}, 10, []int64{5, 5}},
		{"exact proportion", []int64{30, 70}, 10, []int64{3, 7}},
		// 5*3/8 = 1 r 7 and 5*5/8 = 3 r 1: the leftover unit goes to the first utility.
		{"largest remainder", []int64{3, 5}, 5, []int64{2, 3}},
		{"three way tie broken by id", []int64{1, 1, 1}, 2, []int64{1, 1, 0}},
		{"whole balance", []int64{3, 4, 5}, 12, []int64{3, 4, 5}},
		{"single unit", []int64{10, 20}, 1, []int64{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := []string{"A", "B", "C"}[:len(tt.shares)]
			d, _ := setup(t, names...)
			total := int64(0)
			for i, share := range tt.shares {
				require.NoError(t, d.UpdateDistribution(manager, alice, names[i], dntName, sdkmath.NewInt(share), distributor.Increase))
				total += share
			}

			require.NoError(t, d.TransferDistribution(manager, alice, bob, dntName, sdkmath.NewInt(tt.amount)))

			moved := int64(0)
			for i, name := range names {
				got := d.GetUserDntBalanceInUtil(bob, name, dntName)
				assert.Equal(t, tt.want[i], got.Int64(), "utility %s", name)
				kept := d.GetUserDntBalanceInUtil(alice, name, dntName)
				assert.Equal(t, tt.shares[i], kept.Add(got).Int64(), "utility %s total", name)
				// floor(amount * share / balance) is a lower bound for every utility.
				assert.GreaterOrEqual(t, got.Int64(), tt.amount*tt.shares[i]/total)
				moved += got.Int64()
			}
			assert.Equal(t, tt.amount, moved)
			assert.Equal(t, total, d.TotalDnt(dntName).Int64())
		})
	}
}

func TestTransferDistributionRejects(t *testing.T) {
	d, _ := setup(t, "A")
	require.NoError(t, d.UpdateDistribution(manager, alice, "A", dntName, sdkmath.NewInt(5), distributor.Increase))

	assert.ErrorIs(t, d.TransferDistribution(manager, alice, bob, dntName, sdkmath.NewInt(6)), ledger.ErrInsufficientBalance)
	assert.ErrorIs(t, d.TransferDistribution(manager, alice, common.Address{}, dntName, sdkmath.NewInt(1)), ledger.ErrInvalidAddress)
	assert.ErrorIs(t, d.TransferDistribution(bob, alice, bob, dntName, sdkmath.NewInt(1)), ledger.ErrUnauthorized)
	assert.Equal(t, "5", d.GetUserDntBalanceInUtil(alice, "A", dntName).String())
	assert.Empty(t, d.ListUserUtilities(bob, dntName))
}

func TestExportImport(t *testing.T) {
	d, _ := setup(t, "A", "B")
	require.NoError(t, d.UpdateDistribution(manager, alice, "B", dntName, sdkmath.NewInt(5), distributor.Increase))
	require.NoError(t, d.AddUtilityToDisallowList(admin, "X"))

	token := &fakeToken{addr: tokenAd, balances: map[common.Address]sdkmath.Int{alice: sdkmath.NewInt(5)}}
	restored := distributor.Import(d.Export(), map[string]distributor.TokenRef{dntName: token}, nil)

	assert.Equal(t, d.ListUtilities(), restored.ListUtilities())
	assert.Equal(t, "5", restored.TotalDntInUtil("B", dntName).String())
	assert.Equal(t, []common.Address{alice}, restored.Users(dntName))
	assert.NoError(t, restored.CheckConservation(dntName))
	_, err := restored.AddUtility(admin, "X")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	token.balances[alice] = sdkmath.NewInt(4)
	assert.ErrorIs(t, restored.CheckConservation(dntName), ledger.ErrInsufficientBalance)
}
