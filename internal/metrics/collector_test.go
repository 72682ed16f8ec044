package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
)

type staticSource farm.Telemetry

func (s staticSource) Telemetry() farm.Telemetry {
	return farm.Telemetry(s)
}

func gather(t *testing.T, src TelemetrySource) map[string][]*dto.Metric {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewFarmCollector(src)))

	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string][]*dto.Metric, len(families))
	for _, f := range families {
		out[f.GetName()] = f.GetMetric()
	}
	return out
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestFarmCollector(t *testing.T) {
	src := staticSource{
		HwMon: true,
		Farm: farm.TelemetryAccount{
			Hashrate:              2000,
			Solutions:             farm.SolutionAccount{Accepted: 5, Failed: 1},
			EffectiveHashrate:     1800,
			EffectiveHashrateLong: 1900,
			VerifiedHashes:        9e6,
			VerifiedSolutions:     5,
		},
		Miners: []farm.TelemetryAccount{
			{Prefix: "cp", Hashrate: 1500, Sensors: hwmon.Sensors{TempC: 55, FanP: 40}},
			{Prefix: "cp", Hashrate: 500, Paused: true},
		},
	}
	metrics := gather(t, src)

	require.Equal(t, 2000.0, metrics["hashfarm_hashrate"][0].GetGauge().GetValue())

	solutions := map[string]float64{}
	for _, m := range metrics["hashfarm_solutions_total"] {
		solutions[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	require.Equal(t, map[string]float64{"accepted": 5, "rejected": 0, "wasted": 0, "failed": 1}, solutions)

	paused := map[string]float64{}
	for _, m := range metrics["hashfarm_device_paused"] {
		paused[labelValue(m, "device")] = m.GetGauge().GetValue()
	}
	require.Equal(t, map[string]float64{"cp0": 0, "cp1": 1}, paused)

	temps := map[string]float64{}
	for _, m := range metrics["hashfarm_device_temperature_celsius"] {
		temps[labelValue(m, "device")] = m.GetGauge().GetValue()
	}
	require.Equal(t, 55.0, temps["cp0"])
	require.Len(t, metrics["hashfarm_device_solutions_total"], 8)

	effective := map[string]float64{}
	for _, m := range metrics["hashfarm_effective_hashrate"] {
		effective[labelValue(m, "window")] = m.GetGauge().GetValue()
	}
	require.Equal(t, map[string]float64{"1m": 1800, "10m": 1900}, effective)
	require.Len(t, metrics["hashfarm_device_effective_hashrate"], 4)
	require.Equal(t, 9e6, metrics["hashfarm_verified_hashes_total"][0].GetCounter().GetValue())
	require.Equal(t, 5.0, metrics["hashfarm_verified_solutions_total"][0].GetCounter().GetValue())
}

func TestFarmCollectorWithoutHwmon(t *testing.T) {
	metrics := gather(t, staticSource{Miners: []farm.TelemetryAccount{{Prefix: "cp"}}})

	require.NotContains(t, metrics, "hashfarm_device_temperature_celsius")
	require.Len(t, metrics["hashfarm_device_hashrate"], 1)
}
