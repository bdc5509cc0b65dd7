package services

import (
	"context"
	"net/http"
	"slices"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/liquidstaking"
	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

// Amounts are base-unit decimal strings.

type PoolsPublic struct {
	Reward    string `json:"reward"`
	Unstaking string `json:"unstaking"`
	Unbonded  string `json:"unbonded"`
	Revenue   string `json:"revenue"`
	Bonded    string `json:"bonded"`
	Unbonding string `json:"unbonding"`
}

type UtilityAmountPublic struct {
	Utility string `json:"utility"`
	Amount  string `json:"amount"`
}

type RewardsPublic struct {
	User      string                `json:"user"`
	Total     string                `json:"total"`
	Utilities []UtilityAmountPublic `json:"utilities"`
}

type BalancesPublic struct {
	User         string                `json:"user"`
	Ss58         string                `json:"ss58"`
	Native       string                `json:"native"`
	Dnt          string                `json:"dnt"`
	Withdrawable string                `json:"withdrawable"`
	Utilities    []UtilityAmountPublic `json:"utilities"`
}

type WithdrawalPublic struct {
	ID            uint64 `json:"id"`
	Amount        string `json:"amount"`
	RequestEra    uint64 `json:"request_era"`
	CompletionEra uint64 `json:"completion_era"`
	State         string `json:"state"`
}

type StakerPublic struct {
	Address string `json:"address"`
	Ss58    string `json:"ss58"`
}

type EraPublic struct {
	Era               uint64 `json:"era"`
	Reward            string `json:"reward"`
	Fee               string `json:"fee"`
	Distributed       string `json:"distributed"`
	Dust              string `json:"dust"`
	TotalAllocated    string `json:"total_allocated"`
	AccRewardPerToken string `json:"acc_reward_per_token"`
}

type EraShotPublic struct {
	Era     uint64 `json:"era"`
	Balance string `json:"balance"`
	Rewards string `json:"rewards"`
}

type DappPublic struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

type LedgerEventPublic struct {
	Seq       uint64  `json:"seq"`
	Type      string  `json:"type"`
	Era       uint64  `json:"era"`
	User      string  `json:"user"`
	To        string  `json:"to,omitempty"`
	Amount    string  `json:"amount"`
	Immediate bool    `json:"immediate,omitempty"`
	Utility   string  `json:"utility,omitempty"`
	RequestID *uint64 `json:"request_id,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

type SnapshotBalancePublic struct {
	Snapshot    uint64 `json:"snapshot"`
	User        string `json:"user"`
	Balance     string `json:"balance"`
	TotalSupply string `json:"total_supply"`
}

type StatusPublic struct {
	LastSyncedEra  uint64   `json:"last_synced_era"`
	CurrentEra     uint64   `json:"current_era"`
	DntName        string   `json:"dnt_name"`
	UtilityName    string   `json:"utility_name"`
	TotalSupply    string   `json:"total_supply"`
	MinStakeAmount string   `json:"min_stake_amount"`
	RevenueFeeBps  uint64   `json:"revenue_fee_bps"`
	Paused         bool     `json:"paused"`
	Stakers        int      `json:"stakers"`
	Managers       []string `json:"managers"`
	Partners       []string `json:"partners"`
}

func fromEraInfos(infos []liquidstaking.EraInfo) []EraPublic {
	out := make([]EraPublic, 0, len(infos))
	for _, info := range infos {
		out = append(out, fromEraInfo(info))
	}
	return out
}

func fromEraInfo(info liquidstaking.EraInfo) EraPublic {
	return EraPublic{
		Era:               info.Era,
		Reward:            info.Reward.String(),
		Fee:               info.Fee.String(),
		Distributed:       info.Distributed.String(),
		Dust:              info.Dust.String(),
		TotalAllocated:    info.TotalAllocated.String(),
		AccRewardPerToken: info.AccRewardPerToken.String(),
	}
}

func fromEraShot(shot liquidstaking.EraShot) *EraShotPublic {
	return &EraShotPublic{
		Era:     shot.Era,
		Balance: shot.Balance.String(),
		Rewards: shot.Rewards.String(),
	}
}

func hexList(addrs []common.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Hex())
	}
	return out
}

func (s *Services) currentEra(ctx context.Context) (uint64, *types.Error) {
	era, err := s.module.CurrentEra(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get current era from staking module")
		return 0, toApiError(err)
	}
	return era, nil
}

func (s *Services) Pools(ctx context.Context) PoolsPublic {
	var pools liquidstaking.Pools
	s.view(func(l *Ledger) { pools = l.Engine.Pools() })
	return PoolsPublic{
		Reward:    pools.Reward.String(),
		Unstaking: pools.Unstaking.String(),
		Unbonded:  pools.Unbonded.String(),
		Revenue:   pools.Revenue.String(),
		Bonded:    pools.Bonded.String(),
		Unbonding: pools.Unbonding.String(),
	}
}

func (s *Services) Rewards(ctx context.Context, user common.Address) RewardsPublic {
	out := RewardsPublic{User: user.Hex(), Utilities: []UtilityAmountPublic{}}
	s.view(func(l *Ledger) {
		out.Total = l.Engine.GetUserRewards(user).String()
		for _, u := range l.Distributor.ListUtilities() {
			amount, err := l.Engine.GetUserRewardsFromUtility(user, u.Name)
			if err != nil || amount.IsZero() {
				continue
			}
			out.Utilities = append(out.Utilities, UtilityAmountPublic{Utility: u.Name, Amount: amount.String()})
		}
	})
	return out
}

func (s *Services) Balances(ctx context.Context, user common.Address) (*BalancesPublic, *types.Error) {
	ss58, err := utils.EvmToSS58(user, s.cfg.Server.SS58Prefix)
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}
	era, apiErr := s.currentEra(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	out := &BalancesPublic{User: user.Hex(), Ss58: ss58, Utilities: []UtilityAmountPublic{}}
	s.view(func(l *Ledger) {
		dntName := l.Engine.Params().DntName
		out.Native = l.Bank.BalanceOf(user).String()
		out.Dnt = l.Token.BalanceOf(user).String()
		for _, u := range l.Distributor.ListUserUtilities(user, dntName) {
			out.Utilities = append(out.Utilities, UtilityAmountPublic{
				Utility: u.Name,
				Amount:  l.Distributor.GetUserDntBalanceInUtil(user, u.Name, dntName).String(),
			})
		}
		withdrawable := sdkmath.ZeroInt()
		for _, w := range l.Engine.Withdrawals(user) {
			state := utils.WithdrawalStateAt(w.Fulfilled, w.CompletionEra, era)
			if slices.Contains(utils.QualifiedStatesToWithdraw(), state) {
				withdrawable = withdrawable.Add(w.Amount)
			}
		}
		out.Withdrawable = withdrawable.String()
	})
	return out, nil
}

// Withdrawals lists the withdrawal requests of user. state filters by
// withdrawal state; "open" keeps every request not yet withdrawn.
func (s *Services) Withdrawals(
	ctx context.Context, user common.Address, state string,
) ([]WithdrawalPublic, *types.Error) {
	var filter types.WithdrawalState
	if state != "" && state != "open" {
		parsed, err := types.FromStringToWithdrawalState(state)
		if err != nil {
			return nil, types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		filter = parsed
	}
	era, apiErr := s.currentEra(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var requests []liquidstaking.WithdrawalRequest
	s.view(func(l *Ledger) { requests = l.Engine.Withdrawals(user) })

	out := make([]WithdrawalPublic, 0, len(requests))
	for _, w := range requests {
		ws := utils.WithdrawalStateAt(w.Fulfilled, w.CompletionEra, era)
		if state == "open" && slices.Contains(utils.OutdatedWithdrawalStates, ws) {
			continue
		}
		if filter != "" && ws != filter {
			continue
		}
		out = append(out, WithdrawalPublic{
			ID:            w.ID,
			Amount:        w.Amount.String(),
			RequestEra:    w.RequestEra,
			CompletionEra: w.CompletionEra,
			State:         ws.ToString(),
		})
	}
	return out, nil
}

func (s *Services) Stakers(ctx context.Context) ([]StakerPublic, *types.Error) {
	var stakers []common.Address
	s.view(func(l *Ledger) { stakers = l.Engine.GetStakers() })
	out := make([]StakerPublic, 0, len(stakers))
	for _, addr := range stakers {
		ss58, err := utils.EvmToSS58(addr, s.cfg.Server.SS58Prefix)
		if err != nil {
			return nil, types.NewInternalServiceError(err)
		}
		out = append(out, StakerPublic{Address: addr.Hex(), Ss58: ss58})
	}
	return out, nil
}

// Era reads a synced era from the era history.
func (s *Services) Era(ctx context.Context, era uint64) (*EraPublic, *types.Error) {
	doc, err := s.DbClient.FindEra(ctx, era)
	if err != nil {
		if !db.IsNotFoundError(err) {
			log.Ctx(ctx).Error().Err(err).Uint64("era", era).Msg("failed to find era")
		}
		return nil, toApiError(err)
	}
	return &EraPublic{
		Era:               doc.Era,
		Reward:            doc.Reward,
		Fee:               doc.Fee,
		Distributed:       doc.Distributed,
		Dust:              doc.Dust,
		TotalAllocated:    doc.TotalAllocated,
		AccRewardPerToken: doc.AccRewardPerToken,
	}, nil
}

// BalanceAt reads the receipt token balance of user and the supply as they
// were when snapshot id was taken.
func (s *Services) BalanceAt(ctx context.Context, user common.Address, id uint64) (*SnapshotBalancePublic, *types.Error) {
	var (
		out *SnapshotBalancePublic
		err error
	)
	s.view(func(l *Ledger) {
		var balance, supply sdkmath.Int
		if balance, err = l.Token.BalanceOfAt(user, id); err != nil {
			return
		}
		if supply, err = l.Token.TotalSupplyAt(id); err != nil {
			return
		}
		out = &SnapshotBalancePublic{
			Snapshot:    id,
			User:        user.Hex(),
			Balance:     balance.String(),
			TotalSupply: supply.String(),
		}
	})
	if err != nil {
		return nil, toApiError(err)
	}
	return out, nil
}

func (s *Services) EraShots(ctx context.Context, user common.Address, utility string) ([]EraShotPublic, *types.Error) {
	docs, err := s.DbClient.FindEraShots(ctx, user.Hex(), utility)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to find era shots")
		return nil, types.NewInternalServiceError(err)
	}
	out := make([]EraShotPublic, 0, len(docs))
	for _, d := range docs {
		out = append(out, EraShotPublic{Era: d.Era, Balance: d.Balance, Rewards: d.Rewards})
	}
	return out, nil
}

func (s *Services) Dapps(ctx context.Context) []DappPublic {
	var dapps []liquidstaking.Dapp
	s.view(func(l *Ledger) { dapps = l.Engine.Dapps() })
	out := make([]DappPublic, 0, len(dapps))
	for _, d := range dapps {
		out = append(out, DappPublic{Name: d.Name, Address: d.Address.Hex(), Active: d.Active})
	}
	return out
}

func (s *Services) Status(ctx context.Context) (*StatusPublic, *types.Error) {
	era, apiErr := s.currentEra(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	out := &StatusPublic{CurrentEra: era}
	s.view(func(l *Ledger) {
		params := l.Engine.Params()
		out.LastSyncedEra = l.Engine.LastSyncedEra()
		out.DntName = params.DntName
		out.UtilityName = params.UtilityName
		out.TotalSupply = l.Token.TotalSupply().String()
		out.MinStakeAmount = params.MinStakeAmount.String()
		out.RevenueFeeBps = params.RevenueFeeBps
		out.Paused = l.Token.Paused()
		out.Stakers = len(l.Engine.GetStakers())
		out.Managers = hexList(l.Engine.ACL().Members(ledger.RoleManager))
		out.Partners = hexList(l.Engine.Partners())
	})
	return out, nil
}

// LedgerEvents pages through persisted events in emission order.
func (s *Services) LedgerEvents(
	ctx context.Context, user, eventType, paginationKey string,
) ([]LedgerEventPublic, string, *types.Error) {
	filter := db.LedgerEventFilter{User: user, Type: eventType}
	resultMap, err := s.DbClient.FindLedgerEvents(ctx, filter, paginationKey)
	if err != nil {
		if db.IsInvalidPaginationTokenError(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("Invalid pagination token when fetching ledger events")
			return nil, "", types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("Failed to find ledger events")
		return nil, "", types.NewInternalServiceError(err)
	}
	events := make([]LedgerEventPublic, 0, len(resultMap.Data))
	for _, d := range resultMap.Data {
		events = append(events, LedgerEventPublic{
			Seq:       d.Seq,
			Type:      d.Type,
			Era:       d.Era,
			User:      d.User,
			To:        d.To,
			Amount:    d.Amount,
			Immediate: d.Immediate,
			Utility:   d.Utility,
			RequestID: d.RequestID,
			CreatedAt: d.CreatedAt,
		})
	}
	return events, resultMap.PaginationToken, nil
}

// IsKeeper reports whether addr may sync eras.
func (s *Services) IsKeeper(addr common.Address) bool {
	var ok bool
	s.view(func(l *Ledger) {
		ok = l.Engine.ACL().Require(addr, ledger.RoleAdmin, ledger.RoleManager, ledger.RolePartner) == nil
	})
	return ok
}

func (s *Services) LastSyncedEra() uint64 {
	var era uint64
	s.view(func(l *Ledger) { era = l.Engine.LastSyncedEra() })
	return era
}
