package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealtracker_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealtracker_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	tenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealtracker_tenant_resolutions_total",
		Help: "Tenant selections by outcome",
	}, []string{"outcome"})

	activityRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealtracker_activity_records_total",
		Help: "Activity log appends by result",
	}, []string{"result"})

	dashboardSectionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealtracker_dashboard_section_failures_total",
		Help: "Dashboard sections rendered empty because their query failed",
	}, []string{"section"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveTenantResolution counts one Resolve call. outcome is admin, member, denied or none.
func ObserveTenantResolution(outcome string) {
	tenantResolutions.WithLabelValues(outcome).Inc()
}

// ObserveActivity counts an activity append as written, dropped or failed.
func ObserveActivity(result string) {
	activityRecords.WithLabelValues(result).Inc()
}

func ObserveDashboardFailure(section string) {
	dashboardSectionFailures.WithLabelValues(section).Inc()
}
