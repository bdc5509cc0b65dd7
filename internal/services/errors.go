package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/types"
)

var errorMapping = []struct {
	target     error
	statusCode int
	errorCode  types.ErrorCode
}{
	{ledger.ErrUnauthorized, http.StatusForbidden, types.Forbidden},
	{ledger.ErrNotFound, http.StatusNotFound, types.NotFound},
	{ledger.ErrPaused, http.StatusLocked, types.Locked},
	{ledger.ErrAlreadyExists, http.StatusConflict, types.Conflict},
	{ledger.ErrAlreadyInitialized, http.StatusConflict, types.Conflict},
	{ledger.ErrAlreadyFulfilled, http.StatusConflict, types.Conflict},
	{ledger.ErrImmutable, http.StatusConflict, types.Conflict},
	{ledger.ErrInsufficientBalance, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrInsufficientPoolLiquidity, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrInvalidAmount, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrNotMatured, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrInvalidAddress, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrInvalidEra, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrStaleEra, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrUtilityInactive, http.StatusBadRequest, types.ValidationError},
	{ledger.ErrLimitExceeded, http.StatusBadRequest, types.ValidationError},
}

// toApiError converts an error of the ledger or the db layer into the
// error returned to clients. Unknown errors are internal.
func toApiError(err error) *types.Error {
	if err == nil {
		return nil
	}
	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return types.NewError(m.statusCode, m.errorCode, err)
		}
	}
	if db.IsNotFoundError(err) {
		return types.NewError(http.StatusNotFound, types.NotFound, err)
	}
	if db.IsVersionConflictError(err) {
		return types.NewError(http.StatusConflict, types.Conflict, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(http.StatusRequestTimeout, types.RequestTimeout, err)
	}
	return types.NewInternalServiceError(err)
}
