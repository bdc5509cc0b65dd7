package metrics

import (
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	httpRequestDurationHistogram *prometheus.HistogramVec
	queueProcessDuration         *prometheus.HistogramVec
	clientRequestLatency         *prometheus.HistogramVec
	ledgerEventCount             *prometheus.CounterVec
	poolBalance                  *prometheus.GaugeVec
	lastSyncedEra                prometheus.Gauge
	totalStaked                  prometheus.Gauge
	stakerCount                  prometheus.Gauge
	compensationFailures         prometheus.Counter
)

// Init registers the collectors and serves them on addr. Later calls are
// no-ops.
func Init(addr string) {
	once.Do(func() {
		initMetricsRouter(addr)
		registerMetrics()
	})
}

func initMetricsRouter(metricsAddr string) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	go func() {
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)

	queueProcessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_process_duration_seconds",
			Help:    "Histogram of queue message processing durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"queue", "outcome"},
	)

	clientRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"base_url", "method", "path", "status"},
	)

	ledgerEventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Number of domain events emitted by the ledger.",
		},
		[]string{"type"},
	)

	poolBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledger_pool_balance",
			Help: "Native balance held in each engine pool, in whole units.",
		},
		[]string{"pool"},
	)

	lastSyncedEra = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_last_synced_era",
		Help: "Last era processed by the staking engine.",
	})

	totalStaked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_total_staked",
		Help: "Receipt token supply, in whole units.",
	})

	stakerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_stakers",
		Help: "Number of addresses that ever staked.",
	})

	compensationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staking_module_compensation_failures_total",
		Help: "Rolled back ledger changes whose staking module calls could not be undone.",
	})

	prometheus.MustRegister(
		httpRequestDurationHistogram,
		queueProcessDuration,
		clientRequestLatency,
		ledgerEventCount,
		poolBalance,
		lastSyncedEra,
		totalStaked,
		stakerCount,
		compensationFailures,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		if httpRequestDurationHistogram == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// StartQueueProcessTimer measures how long one message of queueName takes.
func StartQueueProcessTimer(queueName string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		if queueProcessDuration == nil {
			return
		}
		queueProcessDuration.WithLabelValues(queueName, outcome.String()).Observe(time.Since(startTime).Seconds())
	}
}

func StartClientRequestDurationTimer(baseURL, method, path string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		if clientRequestLatency == nil {
			return
		}
		clientRequestLatency.WithLabelValues(
			baseURL, method, path, fmt.Sprintf("%d", statusCode),
		).Observe(time.Since(startTime).Seconds())
	}
}

func RecordLedgerEvent(eventType string) {
	if ledgerEventCount == nil {
		return
	}
	ledgerEventCount.WithLabelValues(eventType).Inc()
}

// LedgerGauges is the ledger state exported as gauges. Amounts are in
// base units.
type LedgerGauges struct {
	Pools         map[string]*big.Int
	LastSyncedEra uint64
	TotalSupply   *big.Int
	Stakers       int
}

var baseUnit = new(big.Float).SetFloat64(1e18)

// toUnits converts base units to whole units. Precision loss is fine for
// dashboards.
func toUnits(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), baseUnit).Float64()
	return f
}

func RecordLedgerGauges(g LedgerGauges) {
	if poolBalance == nil {
		return
	}
	for name, amount := range g.Pools {
		poolBalance.WithLabelValues(name).Set(toUnits(amount))
	}
	lastSyncedEra.Set(float64(g.LastSyncedEra))
	totalStaked.Set(toUnits(g.TotalSupply))
	stakerCount.Set(float64(g.Stakers))
}

func RecordModuleCompensationFailure() {
	if compensationFailures == nil {
		return
	}
	compensationFailures.Inc()
}
