package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
)

const namespace = "hashfarm"

type TelemetrySource interface {
	Telemetry() farm.Telemetry
}

// FarmCollector exports the farm telemetry snapshot on every scrape
type FarmCollector struct {
	source TelemetrySource

	uptime            *prometheus.Desc
	hashrate          *prometheus.Desc
	effectiveHashrate *prometheus.Desc
	verifiedHashes    *prometheus.Desc
	verifiedSolutions *prometheus.Desc
	solutions         *prometheus.Desc
	deviceHashrate    *prometheus.Desc
	deviceEffective   *prometheus.Desc
	devicePaused      *prometheus.Desc
	deviceTemp        *prometheus.Desc
	deviceMemTemp     *prometheus.Desc
	deviceFan         *prometheus.Desc
	devicePower       *prometheus.Desc
	deviceSolutions   *prometheus.Desc
}

func NewFarmCollector(source TelemetrySource) *FarmCollector {
	device := []string{"device"}
	window := []string{"window"}
	deviceWindow := []string{"device", "window"}
	return &FarmCollector{
		source:            source,
		uptime:            desc("uptime_seconds", "Seconds since the farm started", nil),
		hashrate:          desc("hashrate", "Farm hash rate in hashes per second", nil),
		effectiveHashrate: desc("effective_hashrate", "Farm hash rate derived from verified solutions", window),
		verifiedHashes:    desc("verified_hashes_total", "Hashes represented by verified solutions", nil),
		verifiedSolutions: desc("verified_solutions_total", "Solutions that passed host verification", nil),
		solutions:         desc("solutions_total", "Solutions by pool outcome", []string{"outcome"}),
		deviceHashrate:    desc("device_hashrate", "Device hash rate in hashes per second", device),
		deviceEffective:   desc("device_effective_hashrate", "Device hash rate derived from verified solutions", deviceWindow),
		devicePaused:      desc("device_paused", "1 when the device is paused", device),
		deviceTemp:        desc("device_temperature_celsius", "Device core temperature", device),
		deviceMemTemp:     desc("device_memory_temperature_celsius", "Device memory temperature", device),
		deviceFan:         desc("device_fan_percent", "Device fan speed", device),
		devicePower:       desc("device_power_watts", "Device power draw", device),
		deviceSolutions:   desc("device_solutions_total", "Device solutions by pool outcome", []string{"device", "outcome"}),
	}
}

func desc(name, help string, labels []string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
}

func (c *FarmCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.uptime, c.hashrate, c.effectiveHashrate, c.verifiedHashes, c.verifiedSolutions, c.solutions,
		c.deviceHashrate, c.deviceEffective, c.devicePaused, c.deviceTemp,
		c.deviceMemTemp, c.deviceFan, c.devicePower, c.deviceSolutions,
	} {
		ch <- d
	}
}

func (c *FarmCollector) Collect(ch chan<- prometheus.Metric) {
	t := c.source.Telemetry()

	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, t.Uptime().Seconds())
	ch <- prometheus.MustNewConstMetric(c.hashrate, prometheus.GaugeValue, t.Farm.Hashrate)
	collectEffective(ch, c.effectiveHashrate, t.Farm)
	ch <- prometheus.MustNewConstMetric(c.verifiedHashes, prometheus.CounterValue, t.Farm.VerifiedHashes)
	ch <- prometheus.MustNewConstMetric(c.verifiedSolutions, prometheus.CounterValue, float64(t.Farm.VerifiedSolutions))
	collectSolutions(ch, c.solutions, t.Farm.Solutions)

	for i, m := range t.Miners {
		name := fmt.Sprintf("%s%d", m.Prefix, i)
		ch <- prometheus.MustNewConstMetric(c.deviceHashrate, prometheus.GaugeValue, m.Hashrate, name)
		collectEffective(ch, c.deviceEffective, m, name)
		ch <- prometheus.MustNewConstMetric(c.devicePaused, prometheus.GaugeValue, boolToFloat(m.Paused), name)
		if t.HwMon {
			ch <- prometheus.MustNewConstMetric(c.deviceTemp, prometheus.GaugeValue, float64(m.Sensors.TempC), name)
			ch <- prometheus.MustNewConstMetric(c.deviceMemTemp, prometheus.GaugeValue, float64(m.Sensors.MemTempC), name)
			ch <- prometheus.MustNewConstMetric(c.deviceFan, prometheus.GaugeValue, float64(m.Sensors.FanP), name)
			ch <- prometheus.MustNewConstMetric(c.devicePower, prometheus.GaugeValue, m.Sensors.PowerW, name)
		}
		collectSolutions(ch, c.deviceSolutions, m.Solutions, name)
	}
}

func collectSolutions(ch chan<- prometheus.Metric, d *prometheus.Desc, a farm.SolutionAccount, labels ...string) {
	for outcome, v := range map[string]uint{
		"accepted": a.Accepted,
		"rejected": a.Rejected,
		"wasted":   a.Wasted,
		"failed":   a.Failed,
	} {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), append(labels, outcome)...)
	}
}

func collectEffective(ch chan<- prometheus.Metric, d *prometheus.Desc, a farm.TelemetryAccount, labels ...string) {
	ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, a.EffectiveHashrate, append(labels, "1m")...)
	ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, a.EffectiveHashrateLong, append(labels, "10m")...)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
