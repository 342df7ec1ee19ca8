package analytics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusDataCollector(t *testing.T) {
	c := NewPrometheusDataCollector()
	c.RecordAttempt("script", 1)
	c.RecordRetry("script", 1, time.Second)
	c.RecordAttempt("script", 2)
	c.RecordSuccess("script", 2, 10*time.Millisecond)
	c.RecordAttempt("mail", 1)
	c.RecordFailure("mail", 1, "boom")
	c.RecordFlowNodeRetry(7, FLOW_NODE_RETRY_OK)

	require.Equal(t, float64(2), testutil.ToFloat64(c.attempts.WithLabelValues("script")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.retried.WithLabelValues("script")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.succeeded.WithLabelValues("script")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.failed.WithLabelValues("mail")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.flowNodeRetries.WithLabelValues(FLOW_NODE_RETRY_OK)))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "flowrt_work_attempts_total")
}

func TestNewDataCollector(t *testing.T) {
	c, err := NewDataCollector(DataCollectorConfig{CollectorType: NOOP_DATA_COLLECTOR})
	require.NoError(t, err)
	c.RecordAttempt("noop", 1)

	_, err = NewDataCollector(DataCollectorConfig{CollectorType: "ELASTIC"})
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "analytics.log")
	c, err = NewDataCollector(DataCollectorConfig{CollectorType: LOG_FILE_DATA_COLLECTOR, FileName: file})
	require.NoError(t, err)
	c.RecordFailure("mail", 11, "exhausted")
	require.NoError(t, c.(*LogFileDataCollector).Sync())
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "exhausted")
}
