package dnt

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

type State struct {
	Name               string                          `json:"name"`
	Address            common.Address                  `json:"address"`
	Admin              common.Address                  `json:"admin"`
	Owner              common.Address                  `json:"owner"`
	Paused             bool                            `json:"paused"`
	TotalSupply        sdkmath.Int                     `json:"total_supply"`
	Balances           map[common.Address]sdkmath.Int  `json:"balances"`
	SnapshotID         uint64                          `json:"snapshot_id,omitempty"`
	BalanceCheckpoints map[common.Address][]Checkpoint `json:"balance_checkpoints,omitempty"`
	SupplyCheckpoints  []Checkpoint                    `json:"supply_checkpoints,omitempty"`
}

func (t *Token) Export() State {
	balances := make(map[common.Address]sdkmath.Int, len(t.balances))
	for addr, bal := range t.balances {
		balances[addr] = bal
	}
	state := State{
		Name:              t.name,
		Address:           t.address,
		Admin:             t.admin,
		Owner:             t.owner,
		Paused:            t.paused,
		TotalSupply:       t.totalSupply,
		Balances:          balances,
		SnapshotID:        t.snapshotID,
		SupplyCheckpoints: append([]Checkpoint(nil), t.supplyCheckpoints...),
	}
	if len(t.balanceCheckpoints) > 0 {
		state.BalanceCheckpoints = make(map[common.Address][]Checkpoint, len(t.balanceCheckpoints))
		for addr, history := range t.balanceCheckpoints {
			state.BalanceCheckpoints[addr] = append([]Checkpoint(nil), history...)
		}
	}
	return state
}

func Import(state State, distr Distributor) *Token {
	t := &Token{
		name:        state.Name,
		address:     state.Address,
		admin:       state.Admin,
		owner:       state.Owner,
		paused:      state.Paused,
		totalSupply: state.TotalSupply,
		balances:    make(map[common.Address]sdkmath.Int, len(state.Balances)),
		distr:       distr,

		snapshotID:         state.SnapshotID,
		balanceCheckpoints: make(map[common.Address][]Checkpoint, len(state.BalanceCheckpoints)),
		supplyCheckpoints:  state.SupplyCheckpoints,
	}
	if t.totalSupply.IsNil() {
		t.totalSupply = sdkmath.ZeroInt()
	}
	for addr, bal := range state.Balances {
		t.balances[addr] = bal
	}
	for addr, history := range state.BalanceCheckpoints {
		t.balanceCheckpoints[addr] = history
	}
	return t
}
