package liquidstaking

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/bank"
	"github.com/algem/liquid-staking-service/internal/ledger/distributor"
	"github.com/algem/liquid-staking-service/internal/ledger/dnt"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
)

const (
	DefaultRevenueFeeBps  = 900
	DefaultPartnersLimit  = 10
	bpsDenominator        = 10_000
	rewardPrecisionDigits = 18
)

// RewardPrecision scales the reward per token accumulator.
var RewardPrecision = sdkmath.NewIntWithDecimal(1, rewardPrecisionDigits)

type Params struct {
	DntName     string
	UtilityName string
	// MinStakeAmount is the smallest total accepted by a single stake.
	MinStakeAmount sdkmath.Int
	RevenueFeeBps  uint64
	// RewardPrecisionOffset truncates every accumulator increment to a
	// multiple of itself. The truncated part is carried to the next era.
	RewardPrecisionOffset sdkmath.Int
	PartnersLimit         uint64
}

func (p Params) validate() error {
	if p.DntName == "" || p.UtilityName == "" {
		return errorsmod.Wrap(ledger.ErrNotFound, "dnt name and utility name are required")
	}
	if p.RevenueFeeBps > bpsDenominator {
		return errorsmod.Wrapf(ledger.ErrInvalidAmount, "revenue fee %d bps exceeds 100%%", p.RevenueFeeBps)
	}
	if !p.MinStakeAmount.IsNil() && p.MinStakeAmount.IsNegative() {
		return errorsmod.Wrap(ledger.ErrInvalidAmount, "negative min stake amount")
	}
	if !p.RewardPrecisionOffset.IsNil() && !p.RewardPrecisionOffset.IsPositive() {
		return errorsmod.Wrap(ledger.ErrInvalidAmount, "reward precision offset must be positive")
	}
	return nil
}

// Deps are the collaborators of the engine.
type Deps struct {
	Distributor *distributor.Distributor
	Token       *dnt.Token
	Bank        *bank.Bank
	Module      stakingmodule.Module
	Events      *ledger.EventLog
}

func (d Deps) validate() error {
	if d.Distributor == nil || d.Token == nil || d.Bank == nil || d.Module == nil {
		return errorsmod.Wrap(ledger.ErrNotFound, "missing engine dependency")
	}
	return nil
}

type Pool string

const (
	PoolReward    Pool = "reward"
	PoolUnstaking Pool = "unstaking"
	PoolUnbonded  Pool = "unbonded"
	PoolRevenue   Pool = "revenue"
)

// Pools are the native balances held by the engine. Bonded and Unbonding
// track funds currently with the staking module.
type Pools struct {
	Reward    sdkmath.Int `json:"reward"`
	Unstaking sdkmath.Int `json:"unstaking"`
	Unbonded  sdkmath.Int `json:"unbonded"`
	Revenue   sdkmath.Int `json:"revenue"`
	Bonded    sdkmath.Int `json:"bonded"`
	Unbonding sdkmath.Int `json:"unbonding"`
}

func zeroPools() Pools {
	return Pools{
		Reward:    sdkmath.ZeroInt(),
		Unstaking: sdkmath.ZeroInt(),
		Unbonded:  sdkmath.ZeroInt(),
		Revenue:   sdkmath.ZeroInt(),
		Bonded:    sdkmath.ZeroInt(),
		Unbonding: sdkmath.ZeroInt(),
	}
}

// Position is the reward bookkeeping of one (user, utility) allocation.
type Position struct {
	RewardDebt sdkmath.Int `json:"reward_debt"`
	Accrued    sdkmath.Int `json:"accrued"`
	Claimed    sdkmath.Int `json:"claimed"`
}

func newPosition() *Position {
	return &Position{
		RewardDebt: sdkmath.ZeroInt(),
		Accrued:    sdkmath.ZeroInt(),
		Claimed:    sdkmath.ZeroInt(),
	}
}

type EraShot struct {
	Era     uint64      `json:"era"`
	Balance sdkmath.Int `json:"balance"`
	Rewards sdkmath.Int `json:"rewards"`
}

type WithdrawalRequest struct {
	ID            uint64         `json:"id"`
	Owner         common.Address `json:"owner"`
	Amount        sdkmath.Int    `json:"amount"`
	RequestEra    uint64         `json:"request_era"`
	CompletionEra uint64         `json:"completion_era"`
	Fulfilled     bool           `json:"fulfilled"`
}

type unbondingChunk struct {
	Amount        sdkmath.Int `json:"amount"`
	CompletionEra uint64      `json:"completion_era"`
	Pool          Pool        `json:"pool"`
	RequestID     *uint64     `json:"request_id,omitempty"`
}

// EraInfo records how the reward of a synced era was split.
type EraInfo struct {
	Era               uint64      `json:"era"`
	Reward            sdkmath.Int `json:"reward"`
	Fee               sdkmath.Int `json:"fee"`
	Distributed       sdkmath.Int `json:"distributed"`
	Dust              sdkmath.Int `json:"dust"`
	TotalAllocated    sdkmath.Int `json:"total_allocated"`
	AccRewardPerToken sdkmath.Int `json:"acc_reward_per_token"`
}

type EraShotRecord struct {
	User    common.Address
	Utility string
	EraShot
}

// History is the era and era shot records produced since the last drain.
// It is not part of the engine state: records are stored apart from the
// ledger so the state does not grow with every era.
type History struct {
	Eras     []EraInfo
	EraShots []EraShotRecord
}

type Dapp struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
	Active  bool           `json:"active"`
}

// Engine is the staking engine. It is not safe for concurrent use; callers
// serialise every operation.
type Engine struct {
	address     common.Address
	acl         *ledger.ACL
	initialized bool
	params      Params

	distr  *distributor.Distributor
	token  *dnt.Token
	bank   *bank.Bank
	module stakingmodule.Module
	events *ledger.EventLog

	lastSyncedEra     uint64
	accRewardPerToken sdkmath.Int
	dust              sdkmath.Int
	history           History

	pools       Pools
	positions   map[common.Address]map[string]*Position
	stakers     []common.Address
	stakerSet   map[common.Address]struct{}
	withdrawals []*WithdrawalRequest
	unbonding   []unbondingChunk
	dapps       map[string]*Dapp
}

func New(address, admin common.Address) *Engine {
	return &Engine{
		address:           address,
		acl:               ledger.NewACL(admin),
		accRewardPerToken: sdkmath.ZeroInt(),
		dust:              sdkmath.ZeroInt(),
		pools:             zeroPools(),
		positions:         make(map[common.Address]map[string]*Position),
		stakerSet:         make(map[common.Address]struct{}),
		dapps:             make(map[string]*Dapp),
	}
}

// Initialize binds the engine to its ledgers and staking module. The last
// synced era starts at the module's current era.
func (e *Engine) Initialize(ctx context.Context, caller common.Address, params Params, deps Deps) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if e.initialized {
		return errorsmod.Wrap(ledger.ErrAlreadyInitialized, "engine")
	}
	if err := params.validate(); err != nil {
		return err
	}
	if err := deps.validate(); err != nil {
		return err
	}
	if deps.Token.Name() != params.DntName {
		return errorsmod.Wrapf(ledger.ErrNotFound, "token %q does not match dnt %q", deps.Token.Name(), params.DntName)
	}
	if _, err := deps.Distributor.Utility(params.UtilityName); err != nil {
		return err
	}
	era, err := deps.Module.CurrentEra(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "current era")
	}

	if params.MinStakeAmount.IsNil() {
		params.MinStakeAmount = sdkmath.ZeroInt()
	}
	if params.RewardPrecisionOffset.IsNil() {
		params.RewardPrecisionOffset = sdkmath.OneInt()
	}
	if params.PartnersLimit == 0 {
		params.PartnersLimit = DefaultPartnersLimit
	}
	e.params = params
	e.bind(deps)
	e.lastSyncedEra = era
	e.initialized = true
	return nil
}

func (e *Engine) bind(deps Deps) {
	e.distr = deps.Distributor
	e.token = deps.Token
	e.bank = deps.Bank
	e.module = deps.Module
	e.events = deps.Events
	if e.events == nil {
		e.events = &ledger.EventLog{}
	}
}

func (e *Engine) requireInitialized() error {
	if !e.initialized {
		return errorsmod.Wrap(ledger.ErrNotInitialized, "engine")
	}
	return nil
}

func (e *Engine) emit(ev ledger.Event) {
	if ev.Era == 0 {
		ev.Era = e.lastSyncedEra
	}
	e.events.Append(ev)
}

func (e *Engine) Address() common.Address { return e.address }
func (e *Engine) ACL() *ledger.ACL { return e.acl }
func (e *Engine) Params() Params { return e.params }
func (e *Engine) Events() *ledger.EventLog { return e.events }
func (e *Engine) LastSyncedEra() uint64 { return e.lastSyncedEra }
func (e *Engine) Initialized() bool { return e.initialized }
func (e *Engine) MinStakeAmount() sdkmath.Int { return e.params.MinStakeAmount }

func (e *Engine) AccRewardPerToken() sdkmath.Int {
	return e.accRewardPerToken
}

// Dust is the part of past era rewards not yet reflected in the accumulator.
func (e *Engine) Dust() sdkmath.Int {
	return e.dust
}

func (e *Engine) Pools() Pools {
	return e.pools
}

func (e *Engine) GetStakers() []common.Address {
	return append([]common.Address(nil), e.stakers...)
}

// DrainHistory returns the records produced since the last drain and
// clears them.
func (e *Engine) DrainHistory() History {
	out := e.history
	e.history = History{}
	return out
}

func (e *Engine) Withdrawal(id uint64) (WithdrawalRequest, error) {
	if id >= uint64(len(e.withdrawals)) {
		return WithdrawalRequest{}, errorsmod.Wrapf(ledger.ErrNotFound, "withdrawal %d", id)
	}
	return *e.withdrawals[id], nil
}

// Withdrawals returns the withdrawal requests of user in creation order.
func (e *Engine) Withdrawals(user common.Address) []WithdrawalRequest {
	out := make([]WithdrawalRequest, 0)
	for _, w := range e.withdrawals {
		if w.Owner == user {
			out = append(out, *w)
		}
	}
	return out
}

func (e *Engine) Dapps() []Dapp {
	out := make([]Dapp, 0, len(e.dapps))
	for _, u := range e.distr.ListUtilities() {
		if d, ok := e.dapps[u.Name]; ok {
			out = append(out, *d)
		}
	}
	return out
}

func (e *Engine) Partners() []common.Address {
	return e.acl.Members(ledger.RolePartner)
}

func (e *Engine) Position(user common.Address, utility string) Position {
	pos := e.positions[user][utility]
	if pos == nil {
		return *newPosition()
	}
	return *pos
}

func (e *Engine) position(user common.Address, utility string) *Position {
	byUtility := e.positions[user]
	if byUtility == nil {
		byUtility = make(map[string]*Position)
		e.positions[user] = byUtility
	}
	pos := byUtility[utility]
	if pos == nil {
		pos = newPosition()
		byUtility[utility] = pos
	}
	return pos
}

func (e *Engine) accumulated(balance sdkmath.Int) sdkmath.Int {
	return balance.Mul(e.accRewardPerToken).Quo(RewardPrecision)
}

// OnDistributionChanged settles the reward earned by the old balance and
// resets the debt to the new one. It runs on every allocation change of the
// engine's dnt, including transfers between users.
func (e *Engine) OnDistributionChanged(user common.Address, utility, dntName string, before, after sdkmath.Int) {
	if dntName != e.params.DntName {
		return
	}
	pos := e.position(user, utility)
	pos.Accrued = pos.Accrued.Add(e.accumulated(before).Sub(pos.RewardDebt))
	pos.RewardDebt = e.accumulated(after)
}

func (e *Engine) settle(user common.Address, utility string) *Position {
	bal := e.distr.GetUserDntBalanceInUtil(user, utility, e.params.DntName)
	e.OnDistributionChanged(user, utility, e.params.DntName, bal, bal)
	return e.positions[user][utility]
}

// claimable is the settled plus pending reward of a position without
// touching state.
func (e *Engine) claimable(user common.Address, utility string) sdkmath.Int {
	pos := e.Position(user, utility)
	bal := e.distr.GetUserDntBalanceInUtil(user, utility, e.params.DntName)
	return pos.Accrued.Add(e.accumulated(bal).Sub(pos.RewardDebt))
}

// rewardUtilities lists the utilities where user holds an allocation or an
// unclaimed reward, ordered by utility id.
func (e *Engine) rewardUtilities(user common.Address) []string {
	out := make([]string, 0)
	for _, u := range e.distr.ListUtilities() {
		_, tracked := e.positions[user][u.Name]
		if tracked || e.distr.GetUserDntBalanceInUtil(user, u.Name, e.params.DntName).IsPositive() {
			out = append(out, u.Name)
		}
	}
	return out
}

// GetUserRewards is the amount ClaimAll would pay to user.
func (e *Engine) GetUserRewards(user common.Address) sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, utility := range e.rewardUtilities(user) {
		total = total.Add(e.claimable(user, utility))
	}
	return total
}

func (e *Engine) GetUserRewardsFromUtility(user common.Address, utility string) (sdkmath.Int, error) {
	if _, err := e.distr.Utility(utility); err != nil {
		return sdkmath.Int{}, err
	}
	return e.claimable(user, utility), nil
}

func (e *Engine) addStaker(user common.Address) {
	if _, ok := e.stakerSet[user]; ok {
		return
	}
	e.stakerSet[user] = struct{}{}
	e.stakers = append(e.stakers, user)
}

func (e *Engine) requireKeeper(caller common.Address) error {
	return e.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager, ledger.RolePartner)
}
