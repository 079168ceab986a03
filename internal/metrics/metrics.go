package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// PlanRequests counts plan requests by outcome status code.
	PlanRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_requests_total", Help: "Total plan requests."},
		[]string{"status"},
	)
	// PlanDuration records end-to-end plan latencies in seconds.
	PlanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_duration_seconds", Help: "Plan request duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// UpstreamErrors counts collaborator failures by upstream name.
	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_errors_total", Help: "Collaborator failures by upstream."},
		[]string{"upstream"},
	)
	// SamplesEvaluated tracks how many exposure samples one request needed.
	SamplesEvaluated = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_samples_evaluated", Help: "Exposure samples evaluated per plan request.", Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000}},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PlanRequests)
		Registry.MustRegister(PlanDuration)
		Registry.MustRegister(UpstreamErrors)
		Registry.MustRegister(SamplesEvaluated)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
