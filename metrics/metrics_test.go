package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/list", "200"))

	RecordHTTPRequest("GET", "/list", http.StatusOK, 10*time.Millisecond)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/list", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordDownload(t *testing.T) {
	bytesBefore := testutil.ToFloat64(bytesDownloaded)
	okBefore := testutil.ToFloat64(downloadsTotal.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(downloadsTotal.WithLabelValues("error"))

	RecordDownload(100, true)
	RecordDownload(5, false)

	assert.Equal(t, bytesBefore+105, testutil.ToFloat64(bytesDownloaded))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(downloadsTotal.WithLabelValues("success")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(downloadsTotal.WithLabelValues("error")))
}

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(bytesUploaded)

	RecordUpload(4096, true)

	assert.Equal(t, before+4096, testutil.ToFloat64(bytesUploaded))
}

func TestRecordDelete(t *testing.T) {
	attempted := testutil.ToFloat64(deletesAttempted)
	succeeded := testutil.ToFloat64(deletesSucceeded)

	RecordDelete(3, 2)

	assert.Equal(t, attempted+3, testutil.ToFloat64(deletesAttempted))
	assert.Equal(t, succeeded+2, testutil.ToFloat64(deletesSucceeded))
}

func TestHandler(t *testing.T) {
	RecordDelete(1, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cardfs_delete_attempted_total"))
}
