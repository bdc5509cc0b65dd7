package services

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/bank"
	"github.com/algem/liquid-staking-service/internal/ledger/distributor"
	"github.com/algem/liquid-staking-service/internal/ledger/dnt"
	"github.com/algem/liquid-staking-service/internal/ledger/liquidstaking"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
)

// Ledger bundles the components of one deployment. They share one event log.
type Ledger struct {
	Distributor *distributor.Distributor
	Token       *dnt.Token
	Bank        *bank.Bank
	Engine      *liquidstaking.Engine
	Events      *ledger.EventLog
}

// LedgerState is the persisted form of a Ledger. Module is only set when
// the staking module runs in-process.
type LedgerState struct {
	Distributor distributor.State             `json:"distributor"`
	Token       dnt.State                     `json:"token"`
	Bank        bank.State                    `json:"bank"`
	Engine      liquidstaking.State           `json:"engine"`
	Module      *stakingmodule.SimulatedState `json:"module,omitempty"`
}

// Bootstrap deploys a fresh ledger from genesis params. Components are
// wired in deployment order: distributor, token, engine, then the
// distributor registrations and the engine initialization. The keeper is
// granted the manager role so it can sync eras.
func Bootstrap(
	ctx context.Context, params *types.GenesisParams, module stakingmodule.Module, keeper common.Address,
) (*Ledger, error) {
	admin := params.AdminAddress()
	tokenAddr := common.HexToAddress(params.TokenAddress)
	engineAddr := common.HexToAddress(params.EngineAddress)
	events := &ledger.EventLog{}

	distr := distributor.New(admin)
	token, err := dnt.New(params.DntName, tokenAddr, admin, distr)
	if err != nil {
		return nil, fmt.Errorf("deploy token: %w", err)
	}
	token.SetEventLog(events)
	engine := liquidstaking.New(engineAddr, admin)
	b := bank.New()

	steps := []struct {
		name string
		run  func() error
	}{
		{"add dnt", func() error { return distr.AddDnt(admin, params.DntName, token) }},
		{"add utility", func() error {
			_, err := distr.AddUtility(admin, params.UtilityName)
			return err
		}},
		{"set liquid staking", func() error { return distr.SetLiquidStaking(admin, engineAddr, engine) }},
		{"add token manager", func() error { return distr.AddManager(admin, tokenAddr) }},
		{"add engine manager", func() error { return distr.AddManager(admin, engineAddr) }},
		{"transfer token ownership", func() error { return token.TransferOwnership(admin, engineAddr) }},
		{"initialize engine", func() error {
			return engine.Initialize(ctx, admin, liquidstaking.Params{
				DntName:               params.DntName,
				UtilityName:           params.UtilityName,
				MinStakeAmount:        params.MinStake(),
				RevenueFeeBps:         params.RevenueFeeBps,
				RewardPrecisionOffset: params.PrecisionOffset(),
				PartnersLimit:         params.PartnersLimit,
			}, liquidstaking.Deps{
				Distributor: distr,
				Token:       token,
				Bank:        b,
				Module:      module,
				Events:      events,
			})
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	managers := params.Addresses(params.Managers)
	if keeper != (common.Address{}) && keeper != admin {
		managers = append(managers, keeper)
	}
	for _, m := range managers {
		if engine.ACL().Has(ledger.RoleManager, m) {
			continue
		}
		if err := engine.AddManager(admin, m); err != nil {
			return nil, fmt.Errorf("add manager %s: %w", m.Hex(), err)
		}
	}
	for _, p := range params.Addresses(params.Partners) {
		if err := engine.AddPartner(admin, p); err != nil {
			return nil, fmt.Errorf("add partner %s: %w", p.Hex(), err)
		}
	}
	for _, d := range params.Dapps {
		if err := engine.AddDapp(admin, d.Name, common.HexToAddress(d.Address)); err != nil {
			return nil, fmt.Errorf("add dapp %s: %w", d.Name, err)
		}
	}
	for addr, raw := range params.Balances {
		amount, _ := sdkmath.NewIntFromString(raw)
		if err := b.Credit(common.HexToAddress(addr), amount); err != nil {
			return nil, fmt.Errorf("credit %s: %w", addr, err)
		}
	}

	return &Ledger{
		Distributor: distr,
		Token:       token,
		Bank:        b,
		Engine:      engine,
		Events:      events,
	}, nil
}

func (l *Ledger) Export(module stakingmodule.Module) LedgerState {
	state := LedgerState{
		Distributor: l.Distributor.Export(),
		Token:       l.Token.Export(),
		Bank:        l.Bank.Export(),
		Engine:      l.Engine.Export(),
	}
	if sim, ok := module.(*stakingmodule.Simulated); ok {
		moduleState := sim.Export()
		state.Module = &moduleState
	}
	return state
}

// RestoreLedger rebuilds a ledger from state and binds it to module. A
// simulated module is reset to the saved module state.
func RestoreLedger(state LedgerState, module stakingmodule.Module) (*Ledger, error) {
	if sim, ok := module.(*stakingmodule.Simulated); ok && state.Module != nil {
		sim.Restore(*state.Module)
	}
	events := &ledger.EventLog{}
	distr := distributor.Import(state.Distributor, nil, nil)
	token := dnt.Import(state.Token, distr)
	token.SetEventLog(events)
	if err := distr.BindToken(token.Name(), token); err != nil {
		return nil, fmt.Errorf("bind token: %w", err)
	}
	b := bank.Import(state.Bank)
	engine := liquidstaking.Import(state.Engine, liquidstaking.Deps{
		Distributor: distr,
		Token:       token,
		Bank:        b,
		Module:      module,
		Events:      events,
	})
	if state.Distributor.LiquidStaking != (common.Address{}) {
		distr.SetListener(engine)
	}
	return &Ledger{
		Distributor: distr,
		Token:       token,
		Bank:        b,
		Engine:      engine,
		Events:      events,
	}, nil
}
