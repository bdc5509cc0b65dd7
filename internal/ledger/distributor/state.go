package distributor

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

type State struct {
	ACL           ledger.ACLState                                       `json:"acl"`
	Utilities     []Utility                                             `json:"utilities"`
	Disallowed    []string                                              `json:"disallowed"`
	Dnts          []Dnt                                                 `json:"dnts"`
	Balances      map[string]map[common.Address]map[string]sdkmath.Int `json:"balances"`
	LiquidStaking common.Address                                        `json:"liquid_staking"`
}

func (d *Distributor) Export() State {
	state := State{
		ACL:           d.acl.Export(),
		Utilities:     d.ListUtilities(),
		Disallowed:    make([]string, 0, len(d.disallowed)),
		Dnts:          make([]Dnt, 0, len(d.dnts)),
		Balances:      make(map[string]map[common.Address]map[string]sdkmath.Int, len(d.balances)),
		LiquidStaking: d.liquidStaking,
	}
	for name := range d.disallowed {
		state.Disallowed = append(state.Disallowed, name)
	}
	for _, dnt := range d.dnts {
		state.Dnts = append(state.Dnts, *dnt)
	}
	for dnt, users := range d.balances {
		state.Balances[dnt] = make(map[common.Address]map[string]sdkmath.Int, len(users))
		for user, utilities := range users {
			state.Balances[dnt][user] = make(map[string]sdkmath.Int, len(utilities))
			for utility, bal := range utilities {
				state.Balances[dnt][user][utility] = bal
			}
		}
	}
	return state
}

// Import rebuilds a distributor from its exported state. Tokens are bound
// by dnt name; the listener is re-attached when the liquid staking
// reference was set.
func Import(state State, tokens map[string]TokenRef, listener Listener) *Distributor {
	d := New(common.Address{})
	d.acl = ledger.ImportACL(state.ACL)
	for i := range state.Utilities {
		u := state.Utilities[i]
		d.utilities = append(d.utilities, &u)
		d.utilityByName[u.Name] = &u
	}
	for _, name := range state.Disallowed {
		d.disallowed[name] = struct{}{}
	}
	for i := range state.Dnts {
		dnt := state.Dnts[i]
		dnt.token = tokens[dnt.Name]
		d.dnts[dnt.Name] = &dnt
	}
	for dnt, users := range state.Balances {
		for user, utilities := range users {
			for utility, bal := range utilities {
				if bal.IsNil() || bal.IsZero() {
					continue
				}
				d.setBalance(user, utility, dnt, bal)
				d.totalDnt[dnt] = d.TotalDnt(dnt).Add(bal)
				d.setTotalInUtil(utility, dnt, d.TotalDntInUtil(utility, dnt).Add(bal))
			}
		}
	}
	d.liquidStaking = state.LiquidStaking
	if d.liquidStaking != (common.Address{}) {
		d.listener = listener
	}
	return d
}

// SetListener re-attaches the listener after Import when the engine is
// restored after the distributor.
func (d *Distributor) SetListener(listener Listener) {
	d.listener = listener
}

// BindToken attaches token to the imported dnt name.
func (d *Distributor) BindToken(name string, token TokenRef) error {
	dnt, err := d.dnt(name)
	if err != nil {
		return err
	}
	dnt.token = token
	return nil
}
