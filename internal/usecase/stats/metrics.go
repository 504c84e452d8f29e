package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tierCache   = "cache"
	tierDurable = "durable"
	tierCompute = "compute"
)

// ResolutionsTotal counts stat resolutions by the tier that served them.
// tier is one of: cache, durable, compute.
var ResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stats_resolutions_total",
		Help: "Total stat resolutions by serving tier",
	},
	[]string{"tier"},
)

func recordResolution(tier string) {
	ResolutionsTotal.WithLabelValues(tier).Inc()
}
