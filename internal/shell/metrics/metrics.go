// Package metrics holds the Prometheus collectors of the catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	RepliesSent        prometheus.Counter
	RepliesFailed      prometheus.Counter
	ReplyRetries       prometheus.Counter
	DispatchDuration   prometheus.Histogram
	FilesUploaded      prometheus.Counter
	UploadedBytes      prometheus.Counter
	SerialMoves        *prometheus.CounterVec
	InquiriesSubmitted *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them on a fresh registry together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		RepliesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_replies_sent_total",
			Help: "Inquiry replies delivered",
		}),
		RepliesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_replies_failed_total",
			Help: "Inquiry replies that exhausted their delivery attempts",
		}),
		ReplyRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_reply_retries_total",
			Help: "Failed delivery attempts that will be retried",
		}),
		DispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_reply_dispatch_duration_seconds",
			Help:    "Duration of one reply dispatch cycle",
			Buckets: prometheus.DefBuckets,
		}),
		FilesUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_files_uploaded_total",
			Help: "Media files uploaded",
		}),
		UploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_uploaded_bytes_total",
			Help: "Bytes written to media storage",
		}),
		SerialMoves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_serial_moves_total",
			Help: "Serial number moves and normalizations by entity and action",
		}, []string{"entity", "action"}),
		InquiriesSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_inquiries_submitted_total",
			Help: "Visitor inquiries by kind",
		}, []string{"kind"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// ObserveDispatch records the duration of a dispatch cycle.
// Call with time.Now() at the start of the cycle.
func (m *Metrics) ObserveDispatch(start time.Time) {
	if m == nil {
		return
	}
	m.DispatchDuration.Observe(time.Since(start).Seconds())
}

// IncrementReplySent records a delivered reply.
func (m *Metrics) IncrementReplySent() {
	if m != nil {
		m.RepliesSent.Inc()
	}
}

// IncrementReplyFailed records a failed attempt. final is true when the
// reply will not be retried.
func (m *Metrics) IncrementReplyFailed(final bool) {
	if m == nil {
		return
	}
	if final {
		m.RepliesFailed.Inc()
		return
	}
	m.ReplyRetries.Inc()
}

// RecordUpload records a stored media file.
func (m *Metrics) RecordUpload(size int64) {
	if m == nil {
		return
	}
	m.FilesUploaded.Inc()
	m.UploadedBytes.Add(float64(size))
}

// IncrementSerial records a move or normalize on entity.
func (m *Metrics) IncrementSerial(entity, action string) {
	if m != nil {
		m.SerialMoves.WithLabelValues(entity, action).Inc()
	}
}

// IncrementInquiry records a submitted contact or info request.
func (m *Metrics) IncrementInquiry(kind string) {
	if m != nil {
		m.InquiriesSubmitted.WithLabelValues(kind).Inc()
	}
}
