package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.IncrementReplySent()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.RepliesSent))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RepliesSent))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/v1/categories", http.StatusOK, time.Now())
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/categories", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestReplyCounters(t *testing.T) {
	m := New()

	m.IncrementReplyFailed(false)
	m.IncrementReplyFailed(false)
	m.IncrementReplyFailed(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReplyRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RepliesFailed))
}

func TestRecordUpload(t *testing.T) {
	m := New()

	m.RecordUpload(100)
	m.RecordUpload(50)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesUploaded))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.UploadedBytes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Now())
		m.ObserveDispatch(time.Now())
		m.IncrementReplySent()
		m.IncrementReplyFailed(true)
		m.RecordUpload(1)
		m.IncrementSerial("category", "move")
		m.IncrementInquiry("contact")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncrementSerial("category", "move")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_serial_moves_total{action="move",entity="category"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
