package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timetracker/internal/constants"
)

var (
	// ReportsTotal - число построенных отчетов
	// Labels: kind (monthly/project_participants/worklog_list), status (ok/error)
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_reports_total",
			Help: "Total number of generated reports by kind and status",
		},
		[]string{"kind", "status"},
	)

	// ReportDuration - время построения отчета (секунды)
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timetracker_report_duration_seconds",
			Help:    "Report generation duration in seconds by kind",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"kind"},
	)

	// ReportRows - число работников (или строк) в последнем успешном отчете
	ReportRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "timetracker_report_rows",
			Help: "Number of workers or rows in the last successful report by kind",
		},
		[]string{"kind"},
	)

	// HTTPRequestsTotal - запросы к API
	// Labels: method, status (HTTP code)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_http_requests_total",
			Help: "Total number of HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)
)

// ObserveReport записывает результат построения одного отчета.
func ObserveReport(kind string, d time.Duration, rows int, err error) {
	status := constants.REPORT_STATUS_OK
	if err != nil {
		status = constants.REPORT_STATUS_ERROR
	}
	ReportsTotal.WithLabelValues(kind, status).Inc()
	ReportDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		ReportRows.WithLabelValues(kind).Set(float64(rows))
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
