package types

import (
	"encoding/json"
	"fmt"
	"os"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

const maxRevenueFeeBps = 10_000

type GenesisDapp struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// GenesisParams describes the ledger deployed on first start.
type GenesisParams struct {
	Admin                 string            `json:"admin"`
	Managers              []string          `json:"managers"`
	Partners              []string          `json:"partners"`
	DistributorAddress    string            `json:"distributor_address"`
	TokenAddress          string            `json:"token_address"`
	EngineAddress         string            `json:"engine_address"`
	DntName               string            `json:"dnt_name"`
	UtilityName           string            `json:"utility_name"`
	MinStakeAmount        string            `json:"min_stake_amount"`
	RevenueFeeBps         uint64            `json:"revenue_fee_bps"`
	RewardPrecisionOffset string            `json:"reward_precision_offset"`
	PartnersLimit         uint64            `json:"partners_limit"`
	Dapps                 []GenesisDapp     `json:"dapps"`
	Balances              map[string]string `json:"balances"`
}

func NewGenesisParams(filePath string) (*GenesisParams, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var params GenesisParams
	err = json.Unmarshal(data, &params)
	if err != nil {
		return nil, err
	}
	err = params.Validate()
	if err != nil {
		return nil, err
	}

	return &params, nil
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, value)
	}
	addr := common.HexToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s address cannot be zero", field)
	}
	return addr, nil
}

func parseAmount(field, value string, allowZero bool) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid %s %q", field, value)
	}
	if amount.IsNegative() || (!allowZero && amount.IsZero()) {
		return sdkmath.Int{}, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return amount, nil
}

// Validate the genesis params
func (g *GenesisParams) Validate() error {
	for field, value := range map[string]string{
		"admin":       g.Admin,
		"distributor": g.DistributorAddress,
		"token":       g.TokenAddress,
		"engine":      g.EngineAddress,
	} {
		if _, err := parseAddress(field, value); err != nil {
			return err
		}
	}
	if g.TokenAddress == g.EngineAddress || g.DistributorAddress == g.EngineAddress {
		return fmt.Errorf("distributor, token and engine must have distinct addresses")
	}
	for _, m := range g.Managers {
		if _, err := parseAddress("manager", m); err != nil {
			return err
		}
	}
	for _, p := range g.Partners {
		if _, err := parseAddress("partner", p); err != nil {
			return err
		}
	}
	if g.DntName == "" {
		return fmt.Errorf("dnt_name cannot be empty")
	}
	if g.UtilityName == "" {
		return fmt.Errorf("utility_name cannot be empty")
	}
	if g.MinStakeAmount != "" {
		if _, err := parseAmount("min_stake_amount", g.MinStakeAmount, true); err != nil {
			return err
		}
	}
	if g.RewardPrecisionOffset != "" {
		if _, err := parseAmount("reward_precision_offset", g.RewardPrecisionOffset, false); err != nil {
			return err
		}
	}
	if g.RevenueFeeBps > maxRevenueFeeBps {
		return fmt.Errorf("revenue_fee_bps cannot exceed %d", maxRevenueFeeBps)
	}
	if g.PartnersLimit > 0 && uint64(len(g.Partners)) > g.PartnersLimit {
		return fmt.Errorf("%d partners exceed the partners limit %d", len(g.Partners), g.PartnersLimit)
	}

	seen := map[string]struct{}{g.UtilityName: {}}
	for _, d := range g.Dapps {
		if d.Name == "" {
			return fmt.Errorf("dapp name cannot be empty")
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("duplicate dapp %q", d.Name)
		}
		seen[d.Name] = struct{}{}
		if _, err := parseAddress("dapp", d.Address); err != nil {
			return err
		}
	}
	for addr, bal := range g.Balances {
		if _, err := parseAddress("balance", addr); err != nil {
			return err
		}
		if _, err := parseAmount("balance", bal, false); err != nil {
			return err
		}
	}
	return nil
}

func (g *GenesisParams) AdminAddress() common.Address { return common.HexToAddress(g.Admin) }

func (g *GenesisParams) Addresses(values []string) []common.Address {
	out := make([]common.Address, 0, len(values))
	for _, v := range values {
		out = append(out, common.HexToAddress(v))
	}
	return out
}

// MinStake returns the configured minimum stake, zero when unset.
func (g *GenesisParams) MinStake() sdkmath.Int {
	if g.MinStakeAmount == "" {
		return sdkmath.ZeroInt()
	}
	amount, _ := sdkmath.NewIntFromString(g.MinStakeAmount)
	return amount
}

// PrecisionOffset returns the accumulator truncation step, one when unset.
func (g *GenesisParams) PrecisionOffset() sdkmath.Int {
	if g.RewardPrecisionOffset == "" {
		return sdkmath.OneInt()
	}
	amount, _ := sdkmath.NewIntFromString(g.RewardPrecisionOffset)
	return amount
}
