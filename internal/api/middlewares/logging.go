package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/types"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, swaggerPathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		startTime := time.Now()
		logCtx := log.With().
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Str("traceId", tracing.TraceId(r.Context()))
		if caller := r.Header.Get(types.CallerHeader); caller != "" {
			logCtx = logCtx.Str("caller", caller)
		}
		logger := logCtx.Logger()

		logger.Debug().Msg("request received")
		r = r.WithContext(logger.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logEvent := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			logEvent = logger.Error()
		}
		if info := tracing.Info(r.Context()); info != nil {
			logEvent = logEvent.Interface("spans", info.Spans())
		}
		logEvent.
			Int("status", rec.status).
			Int64("requestDuration", time.Since(startTime).Milliseconds()).
			Msg("Request completed")
	})
}
