package liquidstaking

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

type ParamsState struct {
	DntName               string      `json:"dnt_name"`
	UtilityName           string      `json:"utility_name"`
	MinStakeAmount        sdkmath.Int `json:"min_stake_amount"`
	RevenueFeeBps         uint64      `json:"revenue_fee_bps"`
	RewardPrecisionOffset sdkmath.Int `json:"reward_precision_offset"`
	PartnersLimit         uint64      `json:"partners_limit"`
}

type State struct {
	Address           common.Address                         `json:"address"`
	ACL               ledger.ACLState                        `json:"acl"`
	Initialized       bool                                   `json:"initialized"`
	Params            ParamsState                            `json:"params"`
	LastSyncedEra     uint64                                 `json:"last_synced_era"`
	AccRewardPerToken sdkmath.Int                            `json:"acc_reward_per_token"`
	Dust              sdkmath.Int                            `json:"dust"`
	Pools             Pools                                  `json:"pools"`
	Positions         map[common.Address]map[string]Position `json:"positions"`
	Stakers           []common.Address                       `json:"stakers"`
	Withdrawals       []WithdrawalRequest                    `json:"withdrawals"`
	Unbonding         []unbondingChunk                       `json:"unbonding"`
	Dapps             []Dapp                                 `json:"dapps"`
}

func (e *Engine) Export() State {
	state := State{
		Address:     e.address,
		ACL:         e.acl.Export(),
		Initialized: e.initialized,
		Params: ParamsState{
			DntName:               e.params.DntName,
			UtilityName:           e.params.UtilityName,
			MinStakeAmount:        e.params.MinStakeAmount,
			RevenueFeeBps:         e.params.RevenueFeeBps,
			RewardPrecisionOffset: e.params.RewardPrecisionOffset,
			PartnersLimit:         e.params.PartnersLimit,
		},
		LastSyncedEra:     e.lastSyncedEra,
		AccRewardPerToken: e.accRewardPerToken,
		Dust:              e.dust,
		Pools:             e.pools,
		Positions:         make(map[common.Address]map[string]Position, len(e.positions)),
		Stakers:           e.GetStakers(),
		Withdrawals:       make([]WithdrawalRequest, 0, len(e.withdrawals)),
		Unbonding:         append([]unbondingChunk(nil), e.unbonding...),
		Dapps:             make([]Dapp, 0, len(e.dapps)),
	}
	for user, byUtility := range e.positions {
		state.Positions[user] = make(map[string]Position, len(byUtility))
		for utility, pos := range byUtility {
			state.Positions[user][utility] = *pos
		}
	}
	for _, w := range e.withdrawals {
		state.Withdrawals = append(state.Withdrawals, *w)
	}
	for _, d := range e.dapps {
		state.Dapps = append(state.Dapps, *d)
	}
	return state
}

// Import rebuilds an engine from its exported state and binds it to deps.
func Import(state State, deps Deps) *Engine {
	e := New(state.Address, common.Address{})
	e.acl = ledger.ImportACL(state.ACL)
	e.initialized = state.Initialized
	e.params = Params{
		DntName:               state.Params.DntName,
		UtilityName:           state.Params.UtilityName,
		MinStakeAmount:        ledger.OrZero(state.Params.MinStakeAmount),
		RevenueFeeBps:         state.Params.RevenueFeeBps,
		RewardPrecisionOffset: state.Params.RewardPrecisionOffset,
		PartnersLimit:         state.Params.PartnersLimit,
	}
	if e.params.RewardPrecisionOffset.IsNil() || !e.params.RewardPrecisionOffset.IsPositive() {
		e.params.RewardPrecisionOffset = sdkmath.OneInt()
	}
	e.bind(deps)
	e.lastSyncedEra = state.LastSyncedEra
	e.accRewardPerToken = ledger.OrZero(state.AccRewardPerToken)
	e.dust = ledger.OrZero(state.Dust)
	e.pools = Pools{
		Reward:    ledger.OrZero(state.Pools.Reward),
		Unstaking: ledger.OrZero(state.Pools.Unstaking),
		Unbonded:  ledger.OrZero(state.Pools.Unbonded),
		Revenue:   ledger.OrZero(state.Pools.Revenue),
		Bonded:    ledger.OrZero(state.Pools.Bonded),
		Unbonding: ledger.OrZero(state.Pools.Unbonding),
	}
	for user, byUtility := range state.Positions {
		for utility, pos := range byUtility {
			p := e.position(user, utility)
			p.RewardDebt = ledger.OrZero(pos.RewardDebt)
			p.Accrued = ledger.OrZero(pos.Accrued)
			p.Claimed = ledger.OrZero(pos.Claimed)
		}
	}
	for _, user := range state.Stakers {
		e.addStaker(user)
	}
	for i := range state.Withdrawals {
		w := state.Withdrawals[i]
		e.withdrawals = append(e.withdrawals, &w)
	}
	e.unbonding = state.Unbonding
	for i := range state.Dapps {
		d := state.Dapps[i]
		e.dapps[d.Name] = &d
	}
	return e
}
