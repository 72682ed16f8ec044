package hwmon

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const DefaultDrmRoot = "/sys/class/drm"

var cardDirRe = regexp.MustCompile(`^card\d+$`)

type amdCard struct {
	pciID string
	hwmon string
}

// AmdSysfs reads amdgpu hwmon files exposed by the linux kernel
type AmdSysfs struct {
	cards []amdCard
}

// NewAmdSysfs scans root (normally /sys/class/drm) for amdgpu cards with a hwmon node
func NewAmdSysfs(root string) *AmdSysfs {
	m := &AmdSysfs{}

	entries, err := os.ReadDir(root)
	if err != nil {
		return m
	}
	sort.Slice(entries, func(i, j int) bool {
		return cardNumber(entries[i].Name()) < cardNumber(entries[j].Name())
	})

	for _, e := range entries {
		if !cardDirRe.MatchString(e.Name()) {
			continue
		}
		device := filepath.Join(root, e.Name(), "device")
		uevent := readUevent(device)
		if uevent["DRIVER"] != "amdgpu" {
			continue
		}
		nodes, _ := filepath.Glob(filepath.Join(device, "hwmon", "hwmon*"))
		if len(nodes) == 0 {
			continue
		}
		m.cards = append(m.cards, amdCard{
			pciID: strings.ToLower(uevent["PCI_SLOT_NAME"]),
			hwmon: nodes[0],
		})
	}
	return m
}

func (m *AmdSysfs) Type() Type {
	return Amd
}

// Count returns the number of detected cards
func (m *AmdSysfs) Count() int {
	return len(m.cards)
}

func (m *AmdSysfs) PciIndexMap() map[string]int {
	res := make(map[string]int, len(m.cards))
	for i, c := range m.cards {
		if c.pciID != "" {
			res[c.pciID] = i
		}
	}
	return res
}

func (m *AmdSysfs) TempC(index int) (uint, bool) {
	v, ok := m.readUint(index, "temp1_input")
	return v / 1000, ok
}

func (m *AmdSysfs) MemTempC(index int) (uint, bool) {
	card, ok := m.card(index)
	if !ok {
		return 0, false
	}
	labels, _ := filepath.Glob(filepath.Join(card.hwmon, "temp*_label"))
	for _, l := range labels {
		b, err := os.ReadFile(l)
		if err != nil || strings.TrimSpace(string(b)) != "mem" {
			continue
		}
		v, ok := readUint(strings.TrimSuffix(l, "_label") + "_input")
		return v / 1000, ok
	}
	return 0, false
}

func (m *AmdSysfs) FanPercent(index int) (uint, bool) {
	pwm, ok := m.readUint(index, "pwm1")
	if !ok {
		return 0, false
	}
	pwmMax, ok := m.readUint(index, "pwm1_max")
	if !ok || pwmMax == 0 {
		pwmMax = 255
	}
	return pwm * 100 / pwmMax, true
}

func (m *AmdSysfs) PowerMilliW(index int) (uint, bool) {
	v, ok := m.readUint(index, "power1_average")
	return v / 1000, ok
}

func (m *AmdSysfs) card(index int) (amdCard, bool) {
	if index < 0 || index >= len(m.cards) {
		return amdCard{}, false
	}
	return m.cards[index], true
}

func (m *AmdSysfs) readUint(index int, name string) (uint, bool) {
	card, ok := m.card(index)
	if !ok {
		return 0, false
	}
	return readUint(filepath.Join(card.hwmon, name))
}

func readUint(path string) (uint, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func readUevent(device string) map[string]string {
	res := make(map[string]string)
	b, err := os.ReadFile(filepath.Join(device, "uevent"))
	if err != nil {
		return res
	}
	for _, line := range strings.Split(string(b), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			res[k] = v
		}
	}
	return res
}

func cardNumber(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "card"))
	if err != nil {
		return -1
	}
	return n
}
