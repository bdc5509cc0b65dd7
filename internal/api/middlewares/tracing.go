package middlewares

import (
	"net/http"

	"github.com/algem/liquid-staking-service/internal/observability/tracing"
)

// TracingMiddleware continues the caller's trace when it sends a valid id
// and echoes the id back so clients can quote it.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.AttachTracingIntoContext(r.Context(), r.Header.Get(tracing.TraceHeader))
		w.Header().Set(tracing.TraceHeader, tracing.TraceId(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
