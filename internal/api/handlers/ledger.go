package handlers

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"

	"github.com/algem/liquid-staking-service/internal/types"
)

// GetPools godoc
// @Summary Get engine pools
// @Produce json
// @Success 200 {object} PublicResponse[services.PoolsPublic] "Pool balances"
// @Router /v1/pools [get]
func (h *Handler) GetPools(request *http.Request) (*Result, *types.Error) {
	return NewResult(h.services.Pools(request.Context())), nil
}

// GetStakers godoc
// @Summary Get every address that ever staked
// @Produce json
// @Success 200 {object} PublicResponse[[]services.StakerPublic]{array} "Stakers with their SS58 form"
// @Router /v1/stakers [get]
func (h *Handler) GetStakers(request *http.Request) (*Result, *types.Error) {
	stakers, err := h.services.Stakers(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(stakers), nil
}

// GetStatus godoc
// @Summary Get ledger status
// @Produce json
// @Success 200 {object} PublicResponse[services.StatusPublic] "Eras, parameters and roles"
// @Router /v1/status [get]
func (h *Handler) GetStatus(request *http.Request) (*Result, *types.Error) {
	status, err := h.services.Status(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(status), nil
}

// GetEra godoc
// @Summary Get the summary of a synced era
// @Produce json
// @Param era path int true "Era number"
// @Success 200 {object} PublicResponse[services.EraPublic] "Era summary"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Era not synced"
// @Router /v1/eras/{era} [get]
func (h *Handler) GetEra(request *http.Request) (*Result, *types.Error) {
	era, parseErr := strconv.ParseUint(chi.URLParam(request, "era"), 10, 64)
	if parseErr != nil {
		return nil, badRequest("invalid era: %v", parseErr)
	}
	info, err := h.services.Era(request.Context(), era)
	if err != nil {
		return nil, err
	}
	return NewResult(info), nil
}

// GetSnapshotBalance godoc
// @Summary Get a receipt token balance at a snapshot
// @Produce json
// @Param id path int true "Snapshot id"
// @Param user query string true "User EVM address"
// @Success 200 {object} PublicResponse[services.SnapshotBalancePublic] "Balance and supply"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 404 {object} types.Error "Unknown snapshot"
// @Router /v1/snapshots/{id} [get]
func (h *Handler) GetSnapshotBalance(request *http.Request) (*Result, *types.Error) {
	id, parseErr := strconv.ParseUint(chi.URLParam(request, "id"), 10, 64)
	if parseErr != nil {
		return nil, badRequest("invalid snapshot id: %v", parseErr)
	}
	user, err := parseAddressQuery(request, "user", true)
	if err != nil {
		return nil, err
	}
	balance, err := h.services.BalanceAt(request.Context(), user, id)
	if err != nil {
		return nil, err
	}
	return NewResult(balance), nil
}

// GetDapps godoc
// @Summary Get registered dapps
// @Produce json
// @Success 200 {object} PublicResponse[[]services.DappPublic]{array} "Dapps"
// @Router /v1/dapps [get]
func (h *Handler) GetDapps(request *http.Request) (*Result, *types.Error) {
	return NewResult(h.services.Dapps(request.Context())), nil
}

// GetLedgerEvents godoc
// @Summary Get ledger events
// @Description Pages through emitted events in order.
// @Produce json
// @Param user query string false "Only events of this EVM address"
// @Param type query string false "Only events of this type"
// @Param pagination_key query string false "Pagination key to fetch the next page of events"
// @Success 200 {object} PublicResponse[[]services.LedgerEventPublic]{array} "Events and pagination token"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/events [get]
func (h *Handler) GetLedgerEvents(request *http.Request) (*Result, *types.Error) {
	user, err := parseAddressQuery(request, "user", false)
	if err != nil {
		return nil, err
	}
	userFilter := ""
	if user != (common.Address{}) {
		userFilter = user.Hex()
	}
	paginationKey := request.URL.Query().Get("pagination_key")
	events, nextKey, err := h.services.LedgerEvents(
		request.Context(), userFilter, request.URL.Query().Get("type"), paginationKey,
	)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(events, nextKey), nil
}
