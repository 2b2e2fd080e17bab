package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DaysDecoded.Add(3)
	a.FieldIssues.WithLabelValues("level[03]").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.DaysDecoded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DaysDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FieldIssues.WithLabelValues("level[03]")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetricsForTesting()
	m.TableFetches.WithLabelValues("success").Inc()
	m.CacheLookups.WithLabelValues("miss").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tide_table_fetch_total{outcome="success"} 1`)
	assert.Contains(t, string(body), `tide_cache_total{result="miss"} 1`)
}
