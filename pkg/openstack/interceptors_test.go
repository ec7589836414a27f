package openstack_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func TestInterceptorChain(t *testing.T) {
	t.Parallel()

	t.Run("runs in order", func(t *testing.T) {
		t.Parallel()

		var order []string

		chain := openstack.NewInterceptorChain()
		chain.AddRequestInterceptor(func(ctx context.Context, req *openstack.Request) error {
			order = append(order, "first")

			return nil
		})
		chain.AddRequestInterceptor(func(ctx context.Context, req *openstack.Request) error {
			order = append(order, "second")

			return nil
		})

		err := chain.ExecuteRequestInterceptors(context.Background(), &openstack.Request{})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("stops on error", func(t *testing.T) {
		t.Parallel()

		errStop := errors.New("stop")
		called := false

		chain := openstack.NewInterceptorChain()
		chain.AddResponseInterceptor(func(ctx context.Context, req *openstack.Request, resp *openstack.Response) error {
			return errStop
		})
		chain.AddResponseInterceptor(func(ctx context.Context, req *openstack.Request, resp *openstack.Response) error {
			called = true

			return nil
		})

		err := chain.ExecuteResponseInterceptors(context.Background(), &openstack.Request{}, &openstack.Response{})
		require.ErrorIs(t, err, errStop)
		assert.False(t, called)
	})

	t.Run("nil chain is a no-op", func(t *testing.T) {
		t.Parallel()

		var chain *openstack.InterceptorChain

		require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &openstack.Request{}))
		require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &openstack.Request{}, &openstack.Response{}))
	})
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	req := &openstack.Request{}

	err := openstack.HeaderInterceptor(map[string]string{"X-Request-Id": "abc"})(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "abc", req.Headers.Get("X-Request-Id"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &openstack.Request{Service: "compute", Method: http.MethodGet, URL: "https://nova/v2.1/servers"}

	require.NoError(t, openstack.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, openstack.LoggingResponseInterceptor(logger)(context.Background(), req, &openstack.Response{StatusCode: http.StatusOK}))
	require.NoError(t, openstack.LoggingResponseInterceptor(logger)(context.Background(), req,
		&openstack.Response{StatusCode: http.StatusInternalServerError, Error: errors.New("boom")}))

	assert.Len(t, logger.byLevel("debug"), 2)

	errs := logger.byLevel("error")
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].fields["error"])
	assert.Equal(t, "compute", errs[0].fields["service"])
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := openstack.NewMetricsCollector()

	var changes int

	collector.SetOnChange(func(service string, metrics openstack.Metrics) {
		changes++
	})

	before := openstack.MetricsRequestInterceptor()
	after := openstack.MetricsResponseInterceptor(collector)

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusAccepted} {
		req := &openstack.Request{Service: "volume", Method: http.MethodGet}

		require.NoError(t, before(context.Background(), req))
		time.Sleep(time.Millisecond)
		require.NoError(t, after(context.Background(), req, &openstack.Response{StatusCode: status}))
	}

	metrics, ok := collector.GetMetrics("volume")
	require.True(t, ok)
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Positive(t, metrics.AverageLatency)
	assert.Equal(t, 3, changes)

	_, ok = collector.GetMetrics("compute")
	assert.False(t, ok)
}

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	metrics, err := openstack.NewPrometheusMetrics(reg)
	require.NoError(t, err)

	chain := openstack.NewInterceptorChain()
	metrics.Install(chain)

	for _, status := range []int{http.StatusOK, http.StatusOK, 0} {
		req := &openstack.Request{Service: "network", Method: http.MethodGet}

		require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))
		require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), req, &openstack.Response{StatusCode: status}))
	}

	count, err := testutil.GatherAndCount(reg, "nimbus_gateway_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	histograms, err := testutil.GatherAndCount(reg, "nimbus_gateway_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, histograms)

	_, err = openstack.NewPrometheusMetrics(reg)
	require.Error(t, err)
}
