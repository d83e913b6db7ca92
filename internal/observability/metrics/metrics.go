package metrics

import "github.com/prometheus/client_golang/prometheus"

// PlanningMetrics exposes counters/histograms for trip planning flows.
type PlanningMetrics struct {
	planningTotal *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	vendorTotal   *prometheus.CounterVec
	vendorLatency *prometheus.HistogramVec
}

func NewPlanningMetrics(reg prometheus.Registerer) *PlanningMetrics {
	m := &PlanningMetrics{
		planningTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelmate",
			Subsystem: "planning",
			Name:      "requests_total",
			Help:      "Total planning requests by phase and outcome",
		}, []string{"phase", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travelmate",
			Subsystem: "planning",
			Name:      "llm_latency_seconds",
			Help:      "Latency of LLM completions by agent",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		vendorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelmate",
			Subsystem: "vendors",
			Name:      "calls_total",
			Help:      "Total vendor API calls by vendor and outcome",
		}, []string{"vendor", "status"}),
		vendorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travelmate",
			Subsystem: "vendors",
			Name:      "call_latency_seconds",
			Help:      "Latency of vendor API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"vendor"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.planningTotal, m.llmLatency, m.vendorTotal, m.vendorLatency)
	return m
}

func (m *PlanningMetrics) ObservePlanning(phase, status string) {
	if m == nil {
		return
	}
	m.planningTotal.WithLabelValues(phase, status).Inc()
}

func (m *PlanningMetrics) ObserveLLMLatency(agent string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(agent).Observe(seconds)
}

func (m *PlanningMetrics) ObserveVendorCall(vendor, status string) {
	if m == nil {
		return
	}
	m.vendorTotal.WithLabelValues(vendor, status).Inc()
}

func (m *PlanningMetrics) ObserveVendorLatency(vendor string, seconds float64) {
	if m == nil {
		return
	}
	m.vendorLatency.WithLabelValues(vendor).Observe(seconds)
}
