package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// tracer resolves through the global provider, so spans are exported once
// telemetry.Init has installed one.
var tracer = otel.Tracer("slashboard.feed")

var (
	pageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slashboard_page_fetches_total",
		Help: "Page fetches by collection kind and outcome (more, end, error)",
	}, []string{"collection", "outcome"})

	pageFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slashboard_page_fetch_duration_seconds",
		Help:    "Storage time spent on a single page fetch",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"collection"})

	voteLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slashboard_vote_lookups_total",
		Help: "Vote overlay resolutions by mode (anonymous, empty, batched)",
	}, []string{"mode"})

	treeChildFetches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slashboard_tree_child_fetches",
		Help:    "Child page fetches issued per assembled tree page",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
)
