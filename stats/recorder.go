package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lfg-bot/database"
)

// Process-local mirrors of the durable counters, exposed on /metrics.
// The durable rows in the counters table remain the source of truth.
var (
	adsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfg_ads_posted_total",
		Help: "Number of LFG ads created.",
	})
	connectionsMade = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfg_connections_made_total",
		Help: "Number of successful connect claims.",
	})
	matchesMade = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfg_matches_made_total",
		Help: "Number of matches made.",
	})
	deliveryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfg_delivery_errors_total",
		Help: "Number of failed notifications and message edits.",
	})
)

// Recorder bumps a durable counter and its prometheus mirror together.
type Recorder struct {
	counters *database.CounterDB
}

// NewRecorder creates a Recorder over the durable counter store.
func NewRecorder(counters *database.CounterDB) *Recorder {
	return &Recorder{counters: counters}
}

// Increment adds one to the named metric. The durable write is the one that
// matters; the prometheus mirror is bumped regardless of its outcome.
func (r *Recorder) Increment(metric string) error {
	switch metric {
	case database.MetricAdsPosted:
		adsPosted.Inc()
	case database.MetricConnectionsMade:
		connectionsMade.Inc()
	case database.MetricMatchesMade:
		matchesMade.Inc()
	case database.MetricErrors:
		deliveryErrors.Inc()
	}
	return r.counters.Increment(metric, 1)
}
