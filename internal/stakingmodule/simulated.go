package stakingmodule

import (
	"context"
	"sync"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

const bpsDenominator = 10_000

// Simulated is an in-process staking module. Eras only advance through
// AdvanceEra. Each finished era pays RewardRateBps of the bonded stake
// unless a reward was set explicitly with SetEraReward.
type Simulated struct {
	mu sync.Mutex

	era             uint64
	unbondingPeriod uint64
	rewardRateBps   uint64
	bonded          sdkmath.Int
	unbonding       sdkmath.Int
	rewards         map[uint64]sdkmath.Int
}

func NewSimulated(startEra, unbondingPeriod, rewardRateBps uint64) *Simulated {
	return &Simulated{
		era:             startEra,
		unbondingPeriod: unbondingPeriod,
		rewardRateBps:   rewardRateBps,
		bonded:          sdkmath.ZeroInt(),
		unbonding:       sdkmath.ZeroInt(),
		rewards:         make(map[uint64]sdkmath.Int),
	}
}

func (s *Simulated) CurrentEra(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.era, nil
}

func (s *Simulated) UnbondingPeriod(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unbondingPeriod, nil
}

func (s *Simulated) Bond(_ context.Context, amount sdkmath.Int) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bonded = s.bonded.Add(amount)
	return nil
}

func (s *Simulated) Unbond(_ context.Context, amount sdkmath.Int) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bonded.LT(amount) {
		return errorsmod.Wrapf(ledger.ErrStakingModule, "bonded %s, cannot unbond %s", s.bonded, amount)
	}
	s.bonded = s.bonded.Sub(amount)
	s.unbonding = s.unbonding.Add(amount)
	return nil
}

func (s *Simulated) RewardsAccrued(_ context.Context, era uint64) (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if era > s.era {
		return sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrInvalidEra, "era %d is ahead of current era %d", era, s.era)
	}
	return ledger.OrZero(s.rewards[era]), nil
}

// SetEraReward fixes the reward of an era, overriding the reward rate.
func (s *Simulated) SetEraReward(era uint64, amount sdkmath.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[era] = amount
}

// AdvanceEra moves to the next era and returns it. The reward of the new
// era is derived from the stake bonded when it starts.
func (s *Simulated) AdvanceEra() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.era++
	if _, ok := s.rewards[s.era]; !ok {
		s.rewards[s.era] = s.bonded.MulRaw(int64(s.rewardRateBps)).QuoRaw(bpsDenominator)
	}
	return s.era
}

// PruneRewards forgets the rewards of eras up to and including era, which
// the engine has already pulled.
func (s *Simulated) PruneRewards(era uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for e := range s.rewards {
		if e <= era {
			delete(s.rewards, e)
		}
	}
}

func (s *Simulated) Bonded() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonded
}

func (s *Simulated) Unbonding() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unbonding
}

// SimulatedState is the exported state of a Simulated module.
type SimulatedState struct {
	Era             uint64                 `json:"era"`
	UnbondingPeriod uint64                 `json:"unbonding_period"`
	RewardRateBps   uint64                 `json:"reward_rate_bps"`
	Bonded          sdkmath.Int            `json:"bonded"`
	Unbonding       sdkmath.Int            `json:"unbonding"`
	Rewards         map[uint64]sdkmath.Int `json:"rewards"`
}

func (s *Simulated) Export() SimulatedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	rewards := make(map[uint64]sdkmath.Int, len(s.rewards))
	for era, amount := range s.rewards {
		rewards[era] = amount
	}
	return SimulatedState{
		Era:             s.era,
		UnbondingPeriod: s.unbondingPeriod,
		RewardRateBps:   s.rewardRateBps,
		Bonded:          s.bonded,
		Unbonding:       s.unbonding,
		Rewards:         rewards,
	}
}

// Restore replaces the module state with state.
func (s *Simulated) Restore(state SimulatedState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.era = state.Era
	s.unbondingPeriod = state.UnbondingPeriod
	s.rewardRateBps = state.RewardRateBps
	s.bonded = ledger.OrZero(state.Bonded)
	s.unbonding = ledger.OrZero(state.Unbonding)
	s.rewards = make(map[uint64]sdkmath.Int, len(state.Rewards))
	for era, amount := range state.Rewards {
		s.rewards[era] = amount
	}
}
