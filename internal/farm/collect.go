package farm

import (
	"fmt"

	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
)

type minerSample struct {
	hashrate float64
	paused   bool
	reasons  string
	sensors  hwmon.Sensors
}

// collectData runs on the strand: detects hung devices, pulls hash rates and
// sensors, applies the overheat policy and schedules the next pass
func (f *Farm) collectData() {
	defer f.scheduleCollect()

	miners := f.GetMiners()
	settings := f.settingsSnapshot()

	for _, m := range miners {
		if m.Paused() || !m.Initialized() {
			continue
		}
		if !m.ArmHangCheck() {
			continue
		}
		if settings.ExitOnError {
			f.log.Errorf("hung device %s detected, exiting", m.Name())
			f.onFatal(lib.WrapError(ErrHungDevice, fmt.Errorf("%s", m.Name())))
			return
		}
		if f.Reboot("hung_miner_reboot") {
			// one reboot covers every device
			break
		}
		f.log.Warnf("Hung GPU %d detected and reboot script failed!", m.Index())
	}

	samples := make([]minerSample, len(miners))
	var farmRate float64

	for i, m := range miners {
		s := &samples[i]
		s.paused = m.Paused()
		if !s.paused {
			s.hashrate = m.RetrieveHashRate()
		}

		if settings.HwMon > 0 {
			s.sensors = f.readSensors(m, settings.HwMon == 2)
			if settings.TempStop > 0 {
				f.applyTempPolicy(m, s.sensors.TempC, settings)
			}
		}

		s.paused = m.Paused()
		s.reasons = m.PausedString()
		farmRate += s.hashrate
		m.TriggerHashRateUpdate()
	}

	f.telemetryMu.Lock()
	f.telemetry.Farm.Hashrate = farmRate
	for i, s := range samples {
		if i >= len(f.telemetry.Miners) {
			break
		}
		acc := &f.telemetry.Miners[i]
		acc.Hashrate = s.hashrate
		acc.Paused = s.paused
		acc.PauseReasons = s.reasons
		acc.Sensors = s.sensors
	}
	line := f.telemetry.String()
	f.telemetryMu.Unlock()

	if len(miners) > 0 {
		f.log.Info(line)
	}
}

// applyTempPolicy pauses at tstop and resumes at tstart
func (f *Farm) applyTempPolicy(m *miner.Miner, tempC uint, settings Settings) {
	overheated := m.PauseTest(miner.PauseDueToOverHeating)

	if !overheated && tempC >= settings.TempStop {
		f.log.Warnf("%s reached %dC, pausing until %dC", m.Name(), tempC, settings.TempStart)
		m.Pause(miner.PauseDueToOverHeating)
		return
	}
	if overheated && tempC <= settings.TempStart {
		f.log.Infof("%s cooled down to %dC, resuming", m.Name(), tempC)
		f.resumeMiner(m.Index(), miner.PauseDueToOverHeating)
	}
}

// readSensors maps the device to its monitor index on first use
func (f *Farm) readSensors(m *miner.Miner, withPower bool) hwmon.Sensors {
	info := m.HwmonInfo()
	mon, ok := f.monitors[info.Type]
	if !ok {
		return hwmon.Sensors{}
	}

	index := info.Index
	if index == hwmon.IndexUnmapped {
		index = hwmon.IndexUnavailable
		if i, ok := f.pciMaps[info.Type][info.PciID]; ok {
			index = i
		}
		m.SetHwmonDeviceIndex(index)
	}
	if index < 0 {
		return hwmon.Sensors{}
	}
	return hwmon.Read(mon, index, withPower)
}
