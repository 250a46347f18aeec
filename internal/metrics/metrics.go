package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecoRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papilles_reco_requests_total",
		Help: "Total recommendation requests by path",
	}, []string{"path"}) // "personalized" | "guest"

	RecoDegraded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papilles_reco_degraded_total",
		Help: "Personalized requests degraded to an empty feed after a store failure",
	})

	RecoBackfill = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "papilles_reco_trending_backfill_total",
		Help: "Items served via the trending backfill tier",
	})

	RecoDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "papilles_reco_duration_seconds",
		Help:    "Recommendation request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(RecoRequests, RecoDegraded, RecoBackfill, RecoDuration)
}

// ObserveDuration enregistre la durée d'une requête depuis start.
func ObserveDuration(start time.Time) {
	RecoDuration.Observe(time.Since(start).Seconds())
}
