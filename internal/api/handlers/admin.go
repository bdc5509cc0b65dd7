package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

type SyncRequestPayload struct {
	// Era to sync up to. Zero syncs to the current era of the staking module.
	Era uint64 `json:"era"`
}

type EraShotRequestPayload struct {
	User    string `json:"user"`
	Utility string `json:"utility"`
	Dnt     string `json:"dnt"`
}

type AmountRequestPayload struct {
	Amount string `json:"amount"`
}

type RevenueRequestPayload struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type DappRequestPayload struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	// Active is only read when Address is empty, to toggle an existing dapp.
	Active *bool `json:"active,omitempty"`
}

type RoleRequestPayload struct {
	Address string `json:"address"`
	Grant   bool   `json:"grant"`
}

type PartnersLimitRequestPayload struct {
	Limit uint64 `json:"limit"`
}

type PauseRequestPayload struct {
	Paused bool `json:"paused"`
}

type FaucetRequestPayload struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Sync godoc
// @Summary Sync eras
// @Description Processes every era between the last synced era and the requested one. Syncing an
// @Description era that was already processed returns an empty list.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body SyncRequestPayload true "Target era"
// @Success 200 {object} PublicResponse[[]services.EraPublic]{array} "Synced eras"
// @Failure 403 {object} types.Error "Caller is not a manager"
// @Router /v1/admin/sync [post]
func (h *Handler) Sync(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &SyncRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	eras, err := h.services.Sync(request.Context(), caller, payload.Era)
	if err != nil {
		return nil, err
	}
	return NewResult(eras), nil
}

// NextEra godoc
// @Summary Advance the simulated staking module
// @Description Only available with the simulated staking module. Moves it one era ahead and syncs.
// @Produce json
// @Param X-Caller-Address header string true "Keeper EVM address"
// @Success 200 {object} PublicResponse[[]services.EraPublic]{array} "Synced eras"
// @Failure 400 {object} types.Error "Staking module is not simulated"
// @Router /v1/admin/eras/next [post]
func (h *Handler) NextEra(request *http.Request) (*Result, *types.Error) {
	if err := h.requireKeeper(request); err != nil {
		return nil, err
	}
	eras, err := h.services.SimulateNextEra(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(eras), nil
}

// EraShot godoc
// @Summary Snapshot a user balance
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body EraShotRequestPayload true "Snapshot request"
// @Success 200 {object} PublicResponse[services.EraShotPublic] "Snapshot"
// @Failure 403 {object} types.Error "Caller is not a manager"
// @Router /v1/admin/erashot [post]
func (h *Handler) EraShot(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &EraShotRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	user, parseErr := utils.ParseAddress(payload.User)
	if parseErr != nil {
		return nil, badRequest("invalid user: %v", parseErr)
	}
	shot, err := h.services.EraShot(request.Context(), caller, user, payload.Utility, payload.Dnt)
	if err != nil {
		return nil, err
	}
	return NewResult(shot), nil
}

// FillPool godoc
// @Summary Fund an engine pool
// @Description Moves native balance of the caller into the reward, unstaking or unbonded pool.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Admin EVM address"
// @Param pool path string true "Pool name" Enums(reward, unstaking, unbonded)
// @Param payload body AmountRequestPayload true "Amount"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 404 {object} types.Error "Unknown pool"
// @Router /v1/admin/pools/{pool} [post]
func (h *Handler) FillPool(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &AmountRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", payload.Amount)
	if err != nil {
		return nil, err
	}
	if err := h.services.FillPool(request.Context(), caller, chi.URLParam(request, "pool"), amount); err != nil {
		return nil, err
	}
	return done(), nil
}

// WithdrawRevenue godoc
// @Summary Withdraw collected fees
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Admin EVM address"
// @Param payload body RevenueRequestPayload true "Recipient and amount"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Not enough revenue"
// @Router /v1/admin/revenue [post]
func (h *Handler) WithdrawRevenue(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &RevenueRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	to, parseErr := utils.ParseAddress(payload.To)
	if parseErr != nil {
		return nil, badRequest("invalid to: %v", parseErr)
	}
	amount, err := parseAmount("amount", payload.Amount)
	if err != nil {
		return nil, err
	}
	if err := h.services.WithdrawRevenue(request.Context(), caller, to, amount); err != nil {
		return nil, err
	}
	return done(), nil
}

// Dapps godoc
// @Summary Register or toggle a dapp
// @Description With an address a new dapp is registered, without one the active flag of an existing dapp is set.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body DappRequestPayload true "Dapp"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 409 {object} types.Error "Dapp already registered"
// @Router /v1/admin/dapps [post]
func (h *Handler) Dapps(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &DappRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	if !utils.IsValidUtilityName(payload.Name) {
		return nil, badRequest("invalid dapp name %q", payload.Name)
	}

	if payload.Address == "" {
		if payload.Active == nil {
			return nil, badRequest("either address or active is required")
		}
		if err := h.services.SetDappStatus(request.Context(), caller, payload.Name, *payload.Active); err != nil {
			return nil, err
		}
		return done(), nil
	}

	addr, parseErr := utils.ParseAddress(payload.Address)
	if parseErr != nil {
		return nil, badRequest("invalid address: %v", parseErr)
	}
	if err := h.services.AddDapp(request.Context(), caller, payload.Name, addr); err != nil {
		return nil, err
	}
	return done(), nil
}

func parseRolePayload(request *http.Request) (*RoleRequestPayload, *types.Error) {
	payload := &RoleRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	if _, err := utils.ParseAddress(payload.Address); err != nil {
		return nil, badRequest("invalid address: %v", err)
	}
	return payload, nil
}

// Managers godoc
// @Summary Grant or revoke the manager role
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Admin EVM address"
// @Param payload body RoleRequestPayload true "Address and grant flag"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 403 {object} types.Error "Caller is not the admin"
// @Router /v1/admin/managers [post]
func (h *Handler) Managers(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload, err := parseRolePayload(request)
	if err != nil {
		return nil, err
	}
	addr, _ := utils.ParseAddress(payload.Address)
	if err := h.services.SetManager(request.Context(), caller, addr, payload.Grant); err != nil {
		return nil, err
	}
	return done(), nil
}

// Partners godoc
// @Summary Grant or revoke the partner role
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body RoleRequestPayload true "Address and grant flag"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Partners limit reached"
// @Router /v1/admin/partners [post]
func (h *Handler) Partners(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload, err := parseRolePayload(request)
	if err != nil {
		return nil, err
	}
	addr, _ := utils.ParseAddress(payload.Address)
	if err := h.services.SetPartner(request.Context(), caller, addr, payload.Grant); err != nil {
		return nil, err
	}
	return done(), nil
}

// PartnersLimit godoc
// @Summary Set the maximum number of partners
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body PartnersLimitRequestPayload true "Limit"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Router /v1/admin/partners-limit [post]
func (h *Handler) PartnersLimit(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &PartnersLimitRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	if err := h.services.SetPartnersLimit(request.Context(), caller, payload.Limit); err != nil {
		return nil, err
	}
	return done(), nil
}

// MinStake godoc
// @Summary Set the minimum stake amount
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Manager EVM address"
// @Param payload body AmountRequestPayload true "Minimum amount"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Router /v1/admin/min-stake [post]
func (h *Handler) MinStake(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &AmountRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", payload.Amount)
	if err != nil {
		return nil, err
	}
	if err := h.services.SetMinStakeAmount(request.Context(), caller, amount); err != nil {
		return nil, err
	}
	return done(), nil
}

type SnapshotPublic struct {
	Snapshot uint64 `json:"snapshot"`
}

// TokenSnapshot godoc
// @Summary Snapshot receipt token balances
// @Description Starts a new snapshot. Balances at a snapshot are read from /v1/snapshots/{id}.
// @Produce json
// @Param X-Caller-Address header string true "Admin EVM address"
// @Success 200 {object} PublicResponse[SnapshotPublic] "Snapshot id"
// @Failure 403 {object} types.Error "Caller is not the admin"
// @Router /v1/admin/snapshots [post]
func (h *Handler) TokenSnapshot(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	id, err := h.services.TokenSnapshot(request.Context(), caller)
	if err != nil {
		return nil, err
	}
	return NewResult(SnapshotPublic{Snapshot: id}), nil
}

// Pause godoc
// @Summary Pause or resume receipt token movements
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Admin EVM address"
// @Param payload body PauseRequestPayload true "Pause flag"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 403 {object} types.Error "Caller is not the admin"
// @Router /v1/admin/pause [post]
func (h *Handler) Pause(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &PauseRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	if err := h.services.SetPaused(request.Context(), caller, payload.Paused); err != nil {
		return nil, err
	}
	return done(), nil
}

// Faucet godoc
// @Summary Credit native balance
// @Description Development helper, only enabled with ledger.faucet.
// @Accept json
// @Produce json
// @Param payload body FaucetRequestPayload true "Recipient and amount"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 403 {object} types.Error "Faucet is disabled"
// @Router /v1/faucet [post]
func (h *Handler) Faucet(request *http.Request) (*Result, *types.Error) {
	payload := &FaucetRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	to, parseErr := utils.ParseAddress(payload.To)
	if parseErr != nil {
		return nil, badRequest("invalid to: %v", parseErr)
	}
	amount, err := parseAmount("amount", payload.Amount)
	if err != nil {
		return nil, err
	}
	if err := h.services.GiveMoney(request.Context(), to, amount); err != nil {
		return nil, err
	}
	return done(), nil
}

// requireKeeper guards endpoints whose service call has no caller of its
// own.
func (h *Handler) requireKeeper(request *http.Request) *types.Error {
	caller, err := parseCaller(request)
	if err != nil {
		return err
	}
	if !h.services.IsKeeper(caller) {
		return types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "caller may not sync eras")
	}
	return nil
}
