package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	logger "github.com/rs/zerolog"

	"github.com/algem/liquid-staking-service/internal/api/handlers"
	"github.com/algem/liquid-staking-service/internal/observability/metrics"
	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/types"
)

// ErrorResponse carries the trace id so a failed call can be found in the
// logs.
type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	TraceId   string `json:"traceId,omitempty"`
}

const internalErrorMessage = "Internal service error"

func newInternalServiceError(r *http.Request) *ErrorResponse {
	return &ErrorResponse{
		ErrorCode: types.InternalServiceError.String(),
		Message:   internalErrorMessage,
		TraceId:   tracing.TraceId(r.Context()),
	}
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func registerHandler(handlerFunc func(*http.Request) (*handlers.Result, *types.Error)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// the route pattern keeps path parameters out of the label values
		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		timer := metrics.StartHttpRequestDurationTimer(endpoint)

		result, err := handlerFunc(r)

		if err != nil {
			if http.StatusText(err.StatusCode) == "" {
				logger.Ctx(r.Context()).Error().Err(err).Int("status_code", err.StatusCode).Msg("invalid status code")
				err.StatusCode = http.StatusInternalServerError
			}

			errorResponse := &ErrorResponse{
				ErrorCode: string(err.ErrorCode),
				Message:   err.Err.Error(),
				TraceId:   tracing.TraceId(r.Context()),
			}
			if err.StatusCode >= http.StatusInternalServerError {
				logger.Ctx(r.Context()).Error().Err(errorResponse).Msg("request failed with 5xx error")
				// internal details stay in the logs
				errorResponse.Message = internalErrorMessage
			} else {
				logger.Ctx(r.Context()).Debug().Err(errorResponse).Str("errorCode", errorResponse.ErrorCode).Msg("request rejected")
			}
			timer(err.StatusCode)
			writeResponse(w, r, err.StatusCode, errorResponse)
			return
		}

		if result == nil || http.StatusText(result.Status) == "" {
			logger.Ctx(r.Context()).Error().Msg("invalid success response, error returned")
			timer(http.StatusInternalServerError)
			writeResponse(w, r, http.StatusInternalServerError, newInternalServiceError(r))
			return
		}

		writeResponse(w, r, result.Status, result.Data)
		timer(result.Status)
	}
}

func writeResponse(w http.ResponseWriter, r *http.Request, statusCode int, res interface{}) {
	respBytes, err := json.Marshal(res)

	if err != nil {
		logger.Ctx(r.Context()).Err(err).Msg("failed to marshal error response")
		http.Error(w, "Failed to process the request. Please try again later.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respBytes) // nolint:errcheck
}
