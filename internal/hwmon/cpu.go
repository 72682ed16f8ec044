package hwmon

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// CPUMonitor reports the package temperature for every CPU mining unit. All
// units share the same sensor
type CPUMonitor struct {
	ids         []string
	temperature func() ([]host.TemperatureStat, error)
}

// NewCPUMonitor creates a monitor for devices identified as cpu-0..cpu-(count-1)
func NewCPUMonitor(count int) *CPUMonitor {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = CPUDeviceID(i)
	}
	return &CPUMonitor{ids: ids, temperature: host.SensorsTemperatures}
}

func CPUDeviceID(i int) string {
	return fmt.Sprintf("cpu-%d", i)
}

func (m *CPUMonitor) Type() Type {
	return Cpu
}

func (m *CPUMonitor) PciIndexMap() map[string]int {
	res := make(map[string]int, len(m.ids))
	for i, id := range m.ids {
		res[id] = i
	}
	return res
}

func (m *CPUMonitor) TempC(index int) (uint, bool) {
	if index < 0 || index >= len(m.ids) {
		return 0, false
	}
	// partial readings come together with a warnings error
	stats, _ := m.temperature()

	var (
		pkg, hottest float64
		found        bool
	)
	for _, s := range stats {
		if s.Temperature <= 0 {
			continue
		}
		key := strings.ToLower(s.SensorKey)
		if strings.Contains(key, "package") || strings.Contains(key, "tctl") || strings.HasPrefix(key, "k10temp") {
			pkg = max(pkg, s.Temperature)
			found = true
		}
		hottest = max(hottest, s.Temperature)
	}
	if found {
		return uint(pkg), true
	}
	if hottest > 0 {
		return uint(hottest), true
	}
	return 0, false
}

func (m *CPUMonitor) MemTempC(index int) (uint, bool) {
	return 0, false
}

func (m *CPUMonitor) FanPercent(index int) (uint, bool) {
	return 0, false
}

func (m *CPUMonitor) PowerMilliW(index int) (uint, bool) {
	return 0, false
}
