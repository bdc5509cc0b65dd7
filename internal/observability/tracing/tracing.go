package tracing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TracingContextKey string

const TracingInfoKey = TracingContextKey("requestTracingInfo")
const TraceIdKey = TracingContextKey("requestTraceId")

// TraceHeader carries the trace id in both directions over HTTP.
const TraceHeader = "X-Trace-Id"

type SpanDetail struct {
	Name     string
	Duration int64
}

type TracingInfo struct {
	mu          sync.Mutex
	SpanDetails []SpanDetail
}

func (t *TracingInfo) addSpanDetail(detail SpanDetail) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.SpanDetails = append(t.SpanDetails, detail)
}

// Spans returns a copy of the spans recorded so far.
func (t *TracingInfo) Spans() []SpanDetail {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]SpanDetail(nil), t.SpanDetails...)
}

// AttachTracingIntoContext starts a trace under traceId, or under a fresh
// one when traceId is not a uuid. Spans of WrapWithSpan are collected on it.
func AttachTracingIntoContext(ctx context.Context, traceId string) context.Context {
	if _, err := uuid.Parse(traceId); err != nil {
		traceId = uuid.NewString()
	}
	ctx = context.WithValue(ctx, TraceIdKey, traceId)
	return context.WithValue(ctx, TracingInfoKey, &TracingInfo{})
}

// TraceId returns the trace id attached to ctx, if any.
func TraceId(ctx context.Context) string {
	id, _ := ctx.Value(TraceIdKey).(string)
	return id
}

func Info(ctx context.Context) *TracingInfo {
	info, _ := ctx.Value(TracingInfoKey).(*TracingInfo)
	return info
}

func WrapWithSpan[Result any](ctx context.Context, name string, next func() (Result, error)) (Result, error) {
	tracingInfo := Info(ctx)
	if tracingInfo == nil {
		log.Ctx(ctx).Trace().Str("span", name).Msg("TracingInfo not found in the context")
	}

	startTime := time.Now()
	defer func() {
		if tracingInfo != nil {
			duration := time.Since(startTime).Milliseconds()
			tracingInfo.addSpanDetail(SpanDetail{Name: name, Duration: duration})
		}
	}()

	return next()
}
