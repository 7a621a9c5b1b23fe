// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transport/sim"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newServer(t *testing.T, h ...*health.Health) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewManual(1)
	validator := lsd.Address{0x0a}
	net := sim.New(clk, []sim.ValidatorConfig{{Address: validator, Stake: big.NewInt(100)}})
	p, err := pool.New(db, net, clk, pool.Options{})
	require.NoError(t, err)
	require.NoError(t, p.AddValidator(validator))

	opts := Options{AllowedOrigins: "*", EnableMetrics: true}
	if len(h) > 0 {
		opts.Health = h[0]
	}
	ts := httptest.NewServer(New(p, opts))
	t.Cleanup(ts.Close)
	return ts
}

func request(t *testing.T, method, url string) int {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	return res.StatusCode
}

func TestMetricsMiddleware(t *testing.T) {
	ts := newServer(t)

	assert.Equal(t, http.StatusOK, request(t, http.MethodGet, ts.URL+"/pool"))
	assert.Equal(t, http.StatusOK, request(t, http.MethodGet, ts.URL+"/pool"))
	assert.Equal(t, http.StatusBadRequest, request(t, http.MethodPost, ts.URL+"/pool/phases/stake-query/advance"))
	assert.Equal(t, http.StatusOK, request(t, http.MethodPost, ts.URL+"/pool/phases/rewards-query/advance"))
	assert.Equal(t, http.StatusNotFound, request(t, http.MethodGet, ts.URL+"/unknown"))

	metricsServer := httptest.NewServer(metrics.HTTPHandler())
	defer metricsServer.Close()
	res, err := http.Get(metricsServer.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(res.Body)
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, m := range families["stakepool_api_request_count"].GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		counts[labels["name"]+"/"+labels["code"]] += m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"pool_get_summary/200":   2,
		"pool_advance_phase/400": 1,
		"pool_advance_phase/200": 1,
	}, counts)

	// the step resolved during the request, so its slot is empty again
	inflight := map[string]float64{}
	for _, m := range families["stakepool_pool_inflight_steps_gauge"].GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "step" {
				inflight[l.GetValue()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{"rewards-query": 0}, inflight)
}

func TestCORS(t *testing.T) {
	ts := newServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/pool", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	h := health.New(time.Minute)
	ts := newServer(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, request(t, http.MethodGet, ts.URL+"/health"))
	h.Tick(1, nil)
	assert.Equal(t, http.StatusOK, request(t, http.MethodGet, ts.URL+"/health"))
}
