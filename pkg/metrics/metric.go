package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RouteQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_route_queries_total",
		Help: "Total number of shortest path queries, labelled by weight and result status.",
	}, []string{"weight", "status"})

	RouteQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_route_query_duration_ms",
		Help:    "Shortest path query latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	EdgesBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_edges_blocked_total",
		Help: "Total number of road edges removed, labelled by closure kind.",
	}, []string{"kind"})

	TrafficEdgesScaled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_traffic_edges_scaled_total",
		Help: "Total number of edges whose travel time was rescaled.",
	})

	DispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_outcomes_total",
		Help: "Total number of dispatch selections, labelled by facility kind and final state.",
	}, []string{"kind", "state"})

	CandidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_candidates_rejected_total",
		Help: "Total number of rejected candidates, labelled by reason.",
	}, []string{"reason"})

	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_geocode_requests_total",
		Help: "Total number of geocode lookups, labelled by source (cache, remote) and result.",
	}, []string{"source", "result"})

	NetworkLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_network_loads_total",
		Help: "Total number of road network loads, labelled by status.",
	}, []string{"status"})

	NetworkVertices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_network_vertices",
		Help: "Number of vertices in the loaded road network.",
	})

	NetworkActiveEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_network_active_edges",
		Help: "Number of edges not removed by closures in the loaded road network.",
	})
)
