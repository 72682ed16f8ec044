package httphandlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/config"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/metrics"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
)

func newTestServer(t *testing.T, readOnly bool) (*gin.Engine, *farm.Farm) {
	t.Helper()
	log := lib.NewTestLogger()

	devices := map[string]miner.DeviceDescriptor{}
	for i := 0; i < 2; i++ {
		id := hwmon.CPUDeviceID(i)
		devices[id] = miner.DeviceDescriptor{UniqueID: id, Type: miner.DeviceCpu, Subscription: miner.SubscriptionCpu, CpuNumber: i}
	}
	factory := func(index int, d miner.DeviceDescriptor) (miner.Backend, error) {
		return miner.NewBackendMock(), nil
	}
	f := farm.NewFarm(devices, farm.Settings{Mode: ethash.ModeTest, RebootDir: t.TempDir()}, factory, nil,
		ethash.NewVerifier(ethash.ModeTest, 1, log), log, log, nil)
	require.True(t, f.Start())
	t.Cleanup(f.Stop)

	cfg := &config.Config{}
	cfg.SetDefaults()

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewFarmCollector(f))

	return NewHTTPHandler(f, cfg, registry, readOnly, log), f
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestServer(t, false)

	w := do(r, "GET", "/healthcheck", "")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), `"isMining":true`)
}

func TestGetMiners(t *testing.T) {
	r, _ := newTestServer(t, false)

	w := do(r, "GET", "/miners", "")
	require.Equal(t, 200, w.Code)

	var res MinersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Miners, 2)
	require.Equal(t, "cp1", res.Miners[1].Name)
	require.Equal(t, "cpu-1", res.Miners[1].UniqueID)
}

func TestPauseResumeMiner(t *testing.T) {
	r, f := newTestServer(t, false)

	w := do(r, "POST", "/miners/1/pause", "")
	require.Equal(t, 200, w.Code)
	m, _ := f.GetMiner(1)
	require.True(t, m.PauseTest(miner.PauseDueToAPIRequest))

	var res Miner
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Paused)
	require.Equal(t, "Api request", res.PauseReasons)

	w = do(r, "POST", "/miners/1/resume", "")
	require.Equal(t, 200, w.Code)
	require.False(t, m.Paused())
}

func TestMinerIndexErrors(t *testing.T) {
	r, _ := newTestServer(t, false)

	require.Equal(t, 400, do(r, "GET", "/miners/abc", "").Code)
	require.Equal(t, 404, do(r, "GET", "/miners/9", "").Code)
}

func TestFarmPauseResume(t *testing.T) {
	r, f := newTestServer(t, false)

	require.Equal(t, 200, do(r, "POST", "/farm/pause", "").Code)
	require.True(t, f.Paused())
	require.Equal(t, 200, do(r, "POST", "/farm/resume", "").Code)
	require.False(t, f.Paused())
}

func TestReadOnly(t *testing.T) {
	r, f := newTestServer(t, true)

	require.Equal(t, http.StatusForbidden, do(r, "POST", "/farm/pause", "").Code)
	require.False(t, f.Paused())
	require.Equal(t, 200, do(r, "GET", "/telemetry", "").Code)
}

func TestNonce(t *testing.T) {
	r, f := newTestServer(t, false)

	require.Equal(t, 200, do(r, "POST", "/nonce", `{"nonce":"a1"}`).Code)
	require.Equal(t, "a1", f.Nonce())

	require.Equal(t, 400, do(r, "POST", "/nonce", `{"nonce":"xyz"}`).Code)
	require.Equal(t, "a1", f.Nonce())

	w := do(r, "GET", "/nonce", "")
	require.JSONEq(t, `{"nonce":"a1"}`, w.Body.String())
}

func TestThresholds(t *testing.T) {
	r, f := newTestServer(t, false)

	require.Equal(t, 200, do(r, "POST", "/thresholds", `{"tstart":40,"tstop":75}`).Code)
	require.EqualValues(t, 75, f.TStop())

	require.Equal(t, 400, do(r, "POST", "/thresholds", `{"tstart":80,"tstop":75}`).Code)
	require.EqualValues(t, 40, f.TStart())

	w := do(r, "GET", "/thresholds", "")
	require.JSONEq(t, `{"tstart":40,"tstop":75}`, w.Body.String())
}

func TestRebootWithoutScript(t *testing.T) {
	r, _ := newTestServer(t, false)
	require.Equal(t, 500, do(r, "POST", "/reboot", "").Code)
}

func TestMetrics(t *testing.T) {
	r, _ := newTestServer(t, false)

	w := do(r, "GET", "/metrics", "")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "hashfarm_hashrate")
	require.Contains(t, w.Body.String(), `hashfarm_device_hashrate{device="cp0"}`)
}

func TestGetConfig(t *testing.T) {
	r, _ := newTestServer(t, false)

	w := do(r, "GET", "/config", "")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), `"Version"`)
}
