package baseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/observability/metrics"
	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/types"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
}

type BaseClientOptions struct {
	Timeout int
	Path    string
	// TemplatePath labels the request in metrics when Path carries ids.
	TemplatePath string
	Headers      map[string]string
}

// errorBody is the error payload returned by the upstream services.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func readErrorMessage(resp *http.Response) string {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// upstreamCodes keeps the meaning of the upstream status where callers act
// on it. Any other 4xx is a bad request.
var upstreamCodes = map[int]types.ErrorCode{
	http.StatusNotFound:        types.NotFound,
	http.StatusConflict:        types.Conflict,
	http.StatusRequestTimeout:  types.RequestTimeout,
	http.StatusTooManyRequests: types.RequestTimeout,
}

func statusError(resp *http.Response, url string) *types.Error {
	msg := readErrorMessage(resp)
	if resp.StatusCode >= http.StatusInternalServerError {
		return types.NewErrorWithMsg(resp.StatusCode, types.InternalServiceError,
			fmt.Sprintf("upstream error from %s: %s", url, msg))
	}
	code, ok := upstreamCodes[resp.StatusCode]
	if !ok {
		code = types.BadRequest
	}
	return types.NewErrorWithMsg(resp.StatusCode, code, fmt.Sprintf("%s rejected the request: %s", url, msg))
}

func newRequest[I any](ctx context.Context, method, url string, input *I, headers map[string]string) (*http.Request, error) {
	var body io.Reader
	if input != nil && (method == http.MethodPost || method == http.MethodPut) {
		raw, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// the sidecar logs under the same trace as the call that caused it
	if traceId := tracing.TraceId(ctx); traceId != "" {
		req.Header.Set(tracing.TraceHeader, traceId)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// SendRequest performs one JSON round trip. Upstream failures come back as
// a types.Error carrying the upstream status, so callers can decide whether
// to retry with Retryable.
func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *BaseClientOptions, input *I,
) (*R, *types.Error) {
	if !allowedMethods[method] {
		return nil, types.NewInternalServiceError(fmt.Errorf("method %s is not allowed", method))
	}
	url := client.GetBaseURL() + opts.Path
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout != 0 {
		timeout = opts.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	req, err := newRequest(reqCtx, method, url, input, opts.Headers)
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}

	metricPath := opts.TemplatePath
	if metricPath == "" {
		metricPath = opts.Path
	}
	observe := metrics.StartClientRequestDurationTimer(client.GetBaseURL(), method, metricPath)

	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		observe(0)
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, types.NewErrorWithMsg(http.StatusRequestTimeout, types.RequestTimeout,
				fmt.Sprintf("request timeout after %d ms at %s", timeout, url))
		}
		log.Ctx(ctx).Error().Err(err).Str("url", url).Msg("upstream request failed")
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to send request to %s", url))
	}
	defer resp.Body.Close()
	observe(resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp, url)
	}

	var output R
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to decode response from %s: %w", url, err))
	}
	return &output, nil
}
