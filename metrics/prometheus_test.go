// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func resetMetrics(t *testing.T) {
	service.Store(&metricsBox{defaultNoopMetrics()})
	t.Cleanup(func() { service.Store(&metricsBox{defaultNoopMetrics()}) })
}

func gather(t *testing.T) map[string]*dto.MetricFamily {
	prom, ok := current().(*prometheusMetrics)
	require.True(t, ok)

	families, err := prom.registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	resetMetrics(t)
	InitializePrometheusMetrics()

	count1 := Counter("count1")
	countVec := CounterVec("count_vec1", []string{"zero_or_one"})
	hist := Histogram("hist1", BucketQueryDuration)
	gauge1 := Gauge("gauge1")

	count1.Add(1)
	randCount2 := rand.N(100) + 1
	for range randCount2 {
		Counter("count2").Add(1)
	}

	histTotal := 0
	for i := range rand.N(100) + 2 {
		hist.Observe(int64(i))
		HistogramVec("hist2", []string{"zero_or_one"}, nil).
			ObserveWithLabels(int64(i), map[string]string{"zero_or_one": strconv.Itoa(i % 2)})
		histTotal += i
	}

	totalCountVec := 0
	for i := range rand.N(100) + 2 {
		countVec.AddWithLabel(int64(i), map[string]string{"zero_or_one": strconv.Itoa(i % 2)})
		totalCountVec += i
	}
	gauge1.Set(7)
	gauge1.Add(3)

	metrics := gather(t)
	require.Equal(t, float64(1), metrics["trieview_count1"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(randCount2), metrics["trieview_count2"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(histTotal), metrics["trieview_hist1"].Metric[0].GetHistogram().GetSampleSum())

	sumHistVec := metrics["trieview_hist2"].Metric[0].GetHistogram().GetSampleSum() +
		metrics["trieview_hist2"].Metric[1].GetHistogram().GetSampleSum()
	require.Equal(t, float64(histTotal), sumHistVec)

	sumCountVec := metrics["trieview_count_vec1"].Metric[0].GetCounter().GetValue() +
		metrics["trieview_count_vec1"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(totalCountVec), sumCountVec)

	require.Equal(t, float64(10), metrics["trieview_gauge1"].Metric[0].GetGauge().GetValue())
}

func TestPromHandler(t *testing.T) {
	resetMetrics(t)
	InitializePrometheusMetrics()
	Counter("handler_count").Add(2)

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "trieview_handler_count 2")
}

func TestNoopMetrics(t *testing.T) {
	resetMetrics(t)

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("count1").Add(1)
	Histogram("hist1", nil).Observe(1)
	HistogramVec("hist2", []string{"zero_or_one"}, nil).
		ObserveWithLabels(1, map[string]string{"thisIsNonsense": "butDoesntBreak"})
	CounterVec("count_vec1", []string{"zero_or_one"}).
		AddWithLabel(1, map[string]string{"thisIsNonsense": "butDoesntBreak"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLazyLoading(t *testing.T) {
	resetMetrics(t)

	for _, a := range []any{
		Gauge("noop_gauge"),
		Counter("noop_counter"),
		CounterVec("noop_counter", nil),
		Histogram("noop_hist", nil),
		HistogramVec("noop_hist", nil, nil),
	} {
		require.IsType(t, noop{}, a)
	}

	lazyGauge := LazyLoadGauge("lazy_gauge")
	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyCounterVec := LazyLoadCounterVec("lazy_counter_vec", nil)
	lazyHistogram := LazyLoadHistogram("lazy_histogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazy_histogram_vec", nil, nil)

	// meters created after initialization are of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())

	// same instance on every call
	require.Same(t, lazyCounter(), lazyCounter())
}
