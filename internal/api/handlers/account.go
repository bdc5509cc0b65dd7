package handlers

import (
	"net/http"

	"github.com/algem/liquid-staking-service/internal/types"
)

// GetRewards godoc
// @Summary Get claimable rewards
// @Produce json
// @Param user query string true "User EVM address"
// @Success 200 {object} PublicResponse[services.RewardsPublic] "Total and per utility rewards"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/rewards [get]
func (h *Handler) GetRewards(request *http.Request) (*Result, *types.Error) {
	user, err := parseAddressQuery(request, "user", true)
	if err != nil {
		return nil, err
	}
	return NewResult(h.services.Rewards(request.Context(), user)), nil
}

// GetBalances godoc
// @Summary Get balances of a user
// @Description Native, receipt token and per utility balances plus the amount ready to withdraw.
// @Produce json
// @Param user query string true "User EVM address"
// @Success 200 {object} PublicResponse[services.BalancesPublic] "Balances"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/balances [get]
func (h *Handler) GetBalances(request *http.Request) (*Result, *types.Error) {
	user, err := parseAddressQuery(request, "user", true)
	if err != nil {
		return nil, err
	}
	balances, err := h.services.Balances(request.Context(), user)
	if err != nil {
		return nil, err
	}
	return NewResult(balances), nil
}

// GetWithdrawals godoc
// @Summary Get withdrawal requests of a user
// @Produce json
// @Param user query string true "User EVM address"
// @Param state query string false "Filter by state, or open for every request not yet withdrawn" Enums(open, unbonding, withdrawable, withdrawn)
// @Success 200 {object} PublicResponse[[]services.WithdrawalPublic]{array} "Withdrawal requests"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/withdrawals [get]
func (h *Handler) GetWithdrawals(request *http.Request) (*Result, *types.Error) {
	user, err := parseAddressQuery(request, "user", true)
	if err != nil {
		return nil, err
	}
	withdrawals, err := h.services.Withdrawals(request.Context(), user, request.URL.Query().Get("state"))
	if err != nil {
		return nil, err
	}
	return NewResult(withdrawals), nil
}

// GetEraShots godoc
// @Summary Get era snapshots of a user
// @Produce json
// @Param user query string true "User EVM address"
// @Param utility query string true "Utility name"
// @Success 200 {object} PublicResponse[[]services.EraShotPublic]{array} "Snapshots"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/erashots [get]
func (h *Handler) GetEraShots(request *http.Request) (*Result, *types.Error) {
	user, err := parseAddressQuery(request, "user", true)
	if err != nil {
		return nil, err
	}
	utility := request.URL.Query().Get("utility")
	if utility == "" {
		return nil, badRequest("utility is required")
	}
	shots, apiErr := h.services.EraShots(request.Context(), user, utility)
	if apiErr != nil {
		return nil, apiErr
	}
	return NewResult(shots), nil
}
