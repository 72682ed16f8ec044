package farm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
)

func TestSolutionAccountString(t *testing.T) {
	require.Equal(t, "A0", SolutionAccount{}.String())
	require.Equal(t, "A3:R1", SolutionAccount{Accepted: 3, Rejected: 1}.String())
	require.Equal(t, "A3:W2:R1:F4", SolutionAccount{Accepted: 3, Wasted: 2, Rejected: 1, Failed: 4}.String())
}

func TestTelemetryString(t *testing.T) {
	tel := Telemetry{
		HwMon: true,
		Start: time.Now().Add(-65*time.Minute - 10*time.Second),
		Farm: TelemetryAccount{
			Hashrate:  12.5e6,
			Solutions: SolutionAccount{Accepted: 3, Rejected: 1},
		},
		Miners: []TelemetryAccount{
			{Prefix: "cp", Hashrate: 6.25e6, Sensors: hwmon.Sensors{TempC: 45, FanP: 30}},
			{Prefix: "cp", Hashrate: 6.25e6, Sensors: hwmon.Sensors{TempC: 47, FanP: 30}},
		},
	}
	require.Equal(t, "1:05 A3:R1 12.50 Mh - cp0 6.25 45C 30%, cp1 6.25 47C 30%", tel.String())

	tel.HwMon = false
	require.Equal(t, "1:05 A3:R1 12.50 Mh - cp0 6.25, cp1 6.25", tel.String())
	require.Equal(t, "1 hour 5 minutes", tel.UptimeString())
}

func TestTelemetryCopyIsDetached(t *testing.T) {
	tel := Telemetry{Miners: []TelemetryAccount{{Prefix: "cp"}}}
	c := tel.clone()
	c.Miners[0].Prefix = "cu"
	require.Equal(t, "cp", tel.Miners[0].Prefix)
}
