package handlers

import (
	"net/http"

	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

type StakeRequestPayload struct {
	// Amount stakes into the default utility. Leave empty when staking
	// through Utilities.
	Amount    string   `json:"amount,omitempty"`
	Utilities []string `json:"utilities,omitempty"`
	Amounts   []string `json:"amounts,omitempty"`
}

type UnstakeRequestPayload struct {
	Utilities []string `json:"utilities"`
	Amounts   []string `json:"amounts"`
	Immediate bool     `json:"immediate"`
}

type ClaimRequestPayload struct {
	Utilities []string `json:"utilities"`
	Amounts   []string `json:"amounts"`
}

type WithdrawRequestPayload struct {
	ID uint64 `json:"id"`
}

type TransferRequestPayload struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type HarvestRequestPayload struct {
	User      string   `json:"user"`
	Utilities []string `json:"utilities"`
}

type ClaimAllPublic struct {
	Paid string `json:"paid"`
}

// Stake godoc
// @Summary Stake native tokens
// @Description Locks native balance of the caller and mints the same amount of receipt tokens.
// @Description Either amount or the utilities/amounts pair must be set.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body StakeRequestPayload true "Stake request"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Invalid request payload"
// @Failure 423 {object} types.Error "Receipt token is paused"
// @Router /v1/stake [post]
func (h *Handler) Stake(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &StakeRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}

	if payload.Amount != "" {
		if len(payload.Utilities) > 0 {
			return nil, badRequest("amount and utilities are mutually exclusive")
		}
		amount, err := parseAmount("amount", payload.Amount)
		if err != nil {
			return nil, err
		}
		if err := h.services.Stake(request.Context(), caller, amount); err != nil {
			return nil, err
		}
		return done(), nil
	}

	amounts, err := parseUtilityAmounts(payload.Utilities, payload.Amounts)
	if err != nil {
		return nil, err
	}
	if err := h.services.StakeTo(request.Context(), caller, payload.Utilities, amounts); err != nil {
		return nil, err
	}
	return done(), nil
}

// Unstake godoc
// @Summary Unstake receipt tokens
// @Description Burns receipt tokens and opens a withdrawal request. Immediate unstakes are paid
// @Description from the unstaking pool and are charged the unstaking fee.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body UnstakeRequestPayload true "Unstake request"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Invalid request payload"
// @Router /v1/unstake [post]
func (h *Handler) Unstake(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &UnstakeRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	amounts, err := parseUtilityAmounts(payload.Utilities, payload.Amounts)
	if err != nil {
		return nil, err
	}
	if err := h.services.Unstake(
		request.Context(), caller, payload.Utilities, amounts, payload.Immediate,
	); err != nil {
		return nil, err
	}
	return done(), nil
}

// Claim godoc
// @Summary Claim rewards
// @Description Pays out claimable rewards of the given utilities.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body ClaimRequestPayload true "Claim request"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Invalid request payload"
// @Router /v1/claim [post]
func (h *Handler) Claim(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &ClaimRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	amounts, err := parseUtilityAmounts(payload.Utilities, payload.Amounts)
	if err != nil {
		return nil, err
	}
	if err := h.services.Claim(request.Context(), caller, payload.Utilities, amounts); err != nil {
		return nil, err
	}
	return done(), nil
}

// ClaimAll godoc
// @Summary Claim every reward
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Success 200 {object} PublicResponse[ClaimAllPublic] "Amount paid"
// @Failure 400 {object} types.Error "Nothing to claim"
// @Router /v1/claim-all [post]
func (h *Handler) ClaimAll(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	paid, err := h.services.ClaimAll(request.Context(), caller)
	if err != nil {
		return nil, err
	}
	return NewResult(ClaimAllPublic{Paid: paid}), nil
}

// Withdraw godoc
// @Summary Withdraw a matured withdrawal request
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body WithdrawRequestPayload true "Withdrawal request id"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Request is not yet withdrawable"
// @Failure 409 {object} types.Error "Request already withdrawn"
// @Router /v1/withdraw [post]
func (h *Handler) Withdraw(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &WithdrawRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	if err := h.services.Withdraw(request.Context(), caller, payload.ID); err != nil {
		return nil, err
	}
	return done(), nil
}

// Transfer godoc
// @Summary Transfer receipt tokens
// @Description Moves receipt tokens. The utility allocation of the sender follows proportionally.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body TransferRequestPayload true "Transfer request"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 400 {object} types.Error "Invalid request payload"
// @Router /v1/transfer [post]
func (h *Handler) Transfer(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &TransferRequestPayload{}
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
	if err := h.services.Transfer(request.Context(), caller, to, amount); err != nil {
		return nil, err
	}
	return done(), nil
}

// SyncHarvest godoc
// @Summary Settle pending rewards
// @Description Moves pending rewards of user into the claimable balance. Partners may harvest for others.
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller EVM address"
// @Param payload body HarvestRequestPayload true "Harvest request"
// @Success 200 {object} PublicResponse[MutationPublic]
// @Failure 403 {object} types.Error "Caller may not harvest for user"
// @Router /v1/harvest [post]
func (h *Handler) SyncHarvest(request *http.Request) (*Result, *types.Error) {
	caller, err := parseCaller(request)
	if err != nil {
		return nil, err
	}
	payload := &HarvestRequestPayload{}
	if err := decodePayload(request, payload); err != nil {
		return nil, err
	}
	user := caller
	if payload.User != "" {
		parsed, parseErr := utils.ParseAddress(payload.User)
		if parseErr != nil {
			return nil, badRequest("invalid user: %v", parseErr)
		}
		user = parsed
	}
	if len(payload.Utilities) == 0 {
		return nil, badRequest("utilities must not be empty")
	}
	if err := h.services.SyncHarvest(request.Context(), caller, user, payload.Utilities); err != nil {
		return nil, err
	}
	return done(), nil
}
