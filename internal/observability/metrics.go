package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the venue.
type Metrics struct {
	// Operation processing.
	OpsApplied  *prometheus.CounterVec
	OpsRejected *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec

	// Pool state.
	PoolReserveA  prometheus.Gauge
	PoolReserveB  prometheus.Gauge
	LPShareSupply prometheus.Gauge

	// Venue aggregates.
	TotalUsers  prometheus.Gauge
	TotalVolume prometheus.Gauge
	TotalFees   prometheus.Gauge

	// Ingestion.
	OpsReceived   *prometheus.CounterVec
	OpsParseError prometheus.Counter
	EventsEmitted *prometheus.CounterVec
	EmitDrops     prometheus.Counter

	// Persistence.
	SnapshotsWritten prometheus.Counter
	SnapshotBytes    prometheus.Gauge
	SnapshotDuration prometheus.Histogram
}

// NewMetrics registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OpsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "venue_ops_applied_total",
			Help: "Operations applied to the portfolio, by op.",
		}, []string{"op"}),
		OpsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "venue_ops_rejected_total",
			Help: "Operations rejected before mutation, by op and reason.",
		}, []string{"op", "reason"}),
		OpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "venue_op_duration_seconds",
			Help:    "Wall time per operation including persistence.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
		}, []string{"op"}),

		PoolReserveA: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_pool_reserve_a",
			Help: "Native asset units held by the pool.",
		}),
		PoolReserveB: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_pool_reserve_b",
			Help: "Counter asset units held by the pool.",
		}),
		LPShareSupply: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_lp_share_supply",
			Help: "Outstanding LP shares.",
		}),

		TotalUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_total_users",
			Help: "Accounts that have traded at least once.",
		}),
		TotalVolume: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_total_volume",
			Help: "Cumulative traded volume in input-asset units.",
		}),
		TotalFees: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_total_fees",
			Help: "Cumulative fees collected.",
		}),

		OpsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "venue_ops_received_total",
			Help: "Operation requests pulled from the stream, by op.",
		}, []string{"op"}),
		OpsParseError: factory.NewCounter(prometheus.CounterOpts{
			Name: "venue_ops_parse_errors_total",
			Help: "Operation requests dropped as unparseable.",
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "venue_events_emitted_total",
			Help: "Events published after applied operations, by op.",
		}, []string{"op"}),
		EmitDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "venue_event_emit_drops_total",
			Help: "Events dropped because publishing failed.",
		}),

		SnapshotsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "venue_snapshots_written_total",
			Help: "Portfolio snapshots persisted.",
		}),
		SnapshotBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "venue_snapshot_bytes",
			Help: "Size of the last persisted snapshot.",
		}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "venue_snapshot_duration_seconds",
			Help:    "Wall time to persist one snapshot.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}
