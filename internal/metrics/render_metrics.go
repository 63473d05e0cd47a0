package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	// Report generation metrics
	ReportsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsai_reports_rendered_total",
			Help: "Total number of report generation attempts by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	ReportRenderDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medsai_report_render_duration_seconds",
			Help:    "Time spent laying out and encoding a report",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"format"},
	)

	ReportPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medsai_report_pages",
			Help:    "Number of pages in rendered PDF reports",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 20},
		},
	)

	ReportBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medsai_report_bytes",
			Help:    "Size of rendered reports in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10), // 1KB to 512KB
		},
		[]string{"format"},
	)

	ReportSectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsai_report_sections_total",
			Help: "Total number of report sections rendered by section key",
		},
		[]string{"section"},
	)

	// Workup catalog metrics
	WorkupCatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsai_workup_catalog_reloads_total",
			Help: "Total number of workup catalog reloads by outcome",
		},
		[]string{"outcome"},
	)

	// Archive metrics
	ArchiveReports = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medsai_archive_reports",
			Help: "Number of reports held in the archive",
		},
	)

	ArchiveErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsai_archive_errors_total",
			Help: "Total number of archive failures by operation",
		},
		[]string{"operation"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medsai_http_requests_total",
			Help: "Total number of API requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medsai_http_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordRender records one report generation attempt. Page and byte
// counts are only observed for successful renders.
func RecordRender(format, outcome string, d time.Duration, pages, bytes int) {
	ReportsRenderedTotal.WithLabelValues(format, outcome).Inc()
	ReportRenderDurationSeconds.WithLabelValues(format).Observe(d.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	if pages > 0 {
		ReportPages.Observe(float64(pages))
	}
	ReportBytes.WithLabelValues(format).Observe(float64(bytes))
}

// RecordSections counts each section key present in a rendered report.
func RecordSections(sections []string) {
	for _, s := range sections {
		ReportSectionsTotal.WithLabelValues(s).Inc()
	}
}

// RecordCatalogReload records a workup catalog reload.
func RecordCatalogReload(ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailed
	}
	WorkupCatalogReloadsTotal.WithLabelValues(outcome).Inc()
}

// SetArchiveSize updates the archived report gauge.
func SetArchiveSize(n int) {
	ArchiveReports.Set(float64(n))
}

// RecordArchiveError records a failed archive operation.
func RecordArchiveError(operation string) {
	ArchiveErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(route).Observe(d.Seconds())
}
