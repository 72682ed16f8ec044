package hwmon

import "sync"

// MonitorMock serves scripted readings. Readings of unknown indices are unavailable
type MonitorMock struct {
	kind     Type
	mu       sync.Mutex
	pciIndex map[string]int
	readings map[int]Sensors
}

func NewMonitorMock(kind Type) *MonitorMock {
	return &MonitorMock{
		kind:     kind,
		pciIndex: make(map[string]int),
		readings: make(map[int]Sensors),
	}
}

func (m *MonitorMock) MapPci(pciID string, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pciIndex[pciID] = index
}

func (m *MonitorMock) Set(index int, s Sensors) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings[index] = s
}

func (m *MonitorMock) SetTemp(index int, tempC uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.readings[index]
	s.TempC = tempC
	m.readings[index] = s
}

func (m *MonitorMock) Type() Type {
	return m.kind
}

func (m *MonitorMock) PciIndexMap() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.pciIndex))
	for k, v := range m.pciIndex {
		out[k] = v
	}
	return out
}

func (m *MonitorMock) reading(index int) (Sensors, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.readings[index]
	return s, ok
}

func (m *MonitorMock) TempC(index int) (uint, bool) {
	s, ok := m.reading(index)
	return s.TempC, ok
}

func (m *MonitorMock) MemTempC(index int) (uint, bool) {
	s, ok := m.reading(index)
	return s.MemTempC, ok && s.MemTempC > 0
}

func (m *MonitorMock) FanPercent(index int) (uint, bool) {
	s, ok := m.reading(index)
	return s.FanP, ok
}

func (m *MonitorMock) PowerMilliW(index int) (uint, bool) {
	s, ok := m.reading(index)
	return uint(s.PowerW * 1000), ok && s.PowerW > 0
}
