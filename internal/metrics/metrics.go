package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequestsTotal counts handled API requests by endpoint and status class.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletguard_http_requests_total",
			Help: "API requests handled, by endpoint and HTTP status.",
		},
		[]string{"endpoint", "status"},
	)

	// UpstreamErrorsTotal counts upstream calls that degraded to an unknown/empty
	// value, by collaborator.
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletguard_upstream_errors_total",
			Help: "Upstream calls that failed and degraded to a zero value, by collaborator.",
		},
		[]string{"collaborator"},
	)

	// RiskAnalysesTotal counts completed wallet risk analyses.
	RiskAnalysesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "walletguard_risk_analyses_total",
			Help: "Wallet risk analyses completed.",
		},
	)

	// HoneypotsDetectedTotal counts tokens flagged as honeypots.
	HoneypotsDetectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "walletguard_honeypots_detected_total",
			Help: "Tokens flagged as honeypots during risk analysis.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, which only happens on programmer error.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		UpstreamErrorsTotal,
		RiskAnalysesTotal,
		HoneypotsDetectedTotal,
	)
}
