package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
)

func TestObserveLoad(t *testing.T) {
	m := New()
	res := &analysis.LoadResult{
		Dataset: analysis.NewDataset(make([]analysis.Record, 3)),
		Stats: analysis.CleanStats{
			DroppedRows: 2,
			Invalid:     map[analysis.Field]int{analysis.FieldTotalSpent: 4},
		},
		Outliers: []analysis.OutlierReport{{Field: analysis.FieldQuantity, Indices: []int{1, 2}}},
	}
	m.ObserveLoad(res, nil, 10*time.Millisecond)
	m.ObserveLoad(nil, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Records))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedRows))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.InvalidValues.WithLabelValues("Total Spent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outliers.WithLabelValues("Quantity")))
}

func TestObserveLoad_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveLoad(nil, errors.New("x"), 0) })
}

func TestHandler(t *testing.T) {
	m := New()
	m.ViewRequests.WithLabelValues("summary", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cafesales_api_requests_total{code="200",resource="summary"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
