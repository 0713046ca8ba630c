package calendar

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts source rows and feed builds. A nil *Metrics records nothing.
type Metrics struct {
	rows          prometheus.Counter
	skipped       prometheus.Counter
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

// NewMetrics creates the feed collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whatsup",
			Subsystem: "feed",
			Name:      "rows_total",
			Help:      "Source rows read while building feeds",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "whatsup",
			Subsystem: "feed",
			Name:      "rows_skipped_total",
			Help:      "Source rows dropped for lacking a usable start time",
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whatsup",
			Subsystem: "feed",
			Name:      "builds_total",
			Help:      "Feed builds by result",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "whatsup",
			Subsystem: "feed",
			Name:      "build_duration_seconds",
			Help:      "Time spent loading the source and rendering a feed",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.rows, m.skipped, m.builds, m.buildDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRows(rows, skipped int) {
	if m == nil {
		return
	}
	m.rows.Add(float64(rows))
	m.skipped.Add(float64(skipped))
}

func (m *Metrics) observeBuild(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(elapsed.Seconds())
}
