package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

type Handler struct {
	config   *config.Config
	services *services.Services
}

type paginationResponse struct {
	NextKey string `json:"next_key"`
}

type PublicResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type Result struct {
	Data   interface{}
	Status int
}

// NewResult returns a successful result, with default status code 200
func NewResultWithPagination[T any](data T, pageToken string) *Result {
	res := &PublicResponse[T]{Data: data, Pagination: &paginationResponse{NextKey: pageToken}}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func New(
	ctx context.Context, cfg *config.Config, services *services.Services,
) (*Handler, error) {
	return &Handler{
		config:   cfg,
		services: services,
	}, nil
}

func badRequest(format string, args ...interface{}) *types.Error {
	return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, fmt.Sprintf(format, args...))
}

func parseCaller(request *http.Request) (common.Address, *types.Error) {
	raw := request.Header.Get(types.CallerHeader)
	if raw == "" {
		return common.Address{}, types.NewErrorWithMsg(
			http.StatusUnauthorized, types.Unauthorized, types.CallerHeader+" header is required",
		)
	}
	addr, err := utils.ParseAddress(raw)
	if err != nil {
		return common.Address{}, badRequest("invalid %s header: %v", types.CallerHeader, err)
	}
	return addr, nil
}

func parseAddressQuery(request *http.Request, name string, required bool) (common.Address, *types.Error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		if required {
			return common.Address{}, badRequest("%s is required", name)
		}
		return common.Address{}, nil
	}
	addr, err := utils.ParseAddress(raw)
	if err != nil {
		return common.Address{}, badRequest("invalid %s: %v", name, err)
	}
	return addr, nil
}

func parseUintQuery(request *http.Request, name string) (uint64, *types.Error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return 0, badRequest("%s is required", name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s: %v", name, err)
	}
	return v, nil
}

func decodePayload(request *http.Request, payload interface{}) *types.Error {
	if err := json.NewDecoder(request.Body).Decode(payload); err != nil {
		return badRequest("invalid request payload")
	}
	return nil
}

func parseAmount(name, raw string) (sdkmath.Int, *types.Error) {
	amount, err := utils.ParsePositiveAmount(raw)
	if err != nil {
		return sdkmath.Int{}, badRequest("invalid %s: %v", name, err)
	}
	return amount, nil
}

// parseUtilityAmounts pairs utilities with amounts by index.
func parseUtilityAmounts(utilities, amounts []string) ([]sdkmath.Int, *types.Error) {
	if len(utilities) == 0 {
		return nil, badRequest("utilities must not be empty")
	}
	if len(utilities) != len(amounts) {
		return nil, badRequest("got %d utilities and %d amounts", len(utilities), len(amounts))
	}
	out := make([]sdkmath.Int, 0, len(amounts))
	for i, raw := range amounts {
		if !utils.IsValidUtilityName(utilities[i]) {
			return nil, badRequest("invalid utility name %q", utilities[i])
		}
		amount, err := parseAmount("amount", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, amount)
	}
	return out, nil
}

type MutationPublic struct {
	Ok bool `json:"ok"`
}

func done() *Result {
	return NewResult(MutationPublic{Ok: true})
}
