package hwmon

import "fmt"

// Type is the sensor family serving a device
type Type uint8

const (
	Unknown Type = iota
	Nvidia
	Amd
	Cpu
)

func (t Type) String() string {
	switch t {
	case Nvidia:
		return "nvidia"
	case Amd:
		return "amd"
	case Cpu:
		return "cpu"
	}
	return "unknown"
}

const (
	// IndexUnmapped means the device has not been looked up yet
	IndexUnmapped = -1
	// IndexUnavailable means lookup failed and must not be retried
	IndexUnavailable = -2
)

// Info binds a mining device to its sensors
type Info struct {
	Type  Type
	PciID string
	Index int
}

// Monitor reads sensors of one device family. Every getter is best effort
// and returns false when the value is not available
type Monitor interface {
	Type() Type
	PciIndexMap() map[string]int
	TempC(index int) (uint, bool)
	MemTempC(index int) (uint, bool)
	FanPercent(index int) (uint, bool)
	PowerMilliW(index int) (uint, bool)
}

// Sensors is a reading of one device
type Sensors struct {
	TempC    uint    `json:"tempC"`
	MemTempC uint    `json:"memTempC,omitempty"`
	FanP     uint    `json:"fanPercent"`
	PowerW   float64 `json:"powerW,omitempty"`
}

// Read collects every sensor of the device, power only when withPower is set
func Read(m Monitor, index int, withPower bool) Sensors {
	var s Sensors
	s.TempC, _ = m.TempC(index)
	s.MemTempC, _ = m.MemTempC(index)
	s.FanP, _ = m.FanPercent(index)
	if withPower {
		if mw, ok := m.PowerMilliW(index); ok {
			s.PowerW = float64(mw) / 1000
		}
	}
	return s
}

// String renders the reading as shown in the telemetry line, e.g. "65/80C 45% 120.50W"
func (s Sensors) String() string {
	temp := fmt.Sprintf("%dC", s.TempC)
	if s.MemTempC > 0 {
		temp = fmt.Sprintf("%d/%dC", s.TempC, s.MemTempC)
	}
	out := fmt.Sprintf("%s %d%%", temp, s.FanP)
	if s.PowerW > 0 {
		out += fmt.Sprintf(" %.2fW", s.PowerW)
	}
	return out
}
