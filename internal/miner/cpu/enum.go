package cpu

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
)

// EnumDevices adds one descriptor per logical CPU, up to limit when limit > 0.
// Existing descriptors keep their settings
func EnumDevices(devices map[string]miner.DeviceDescriptor, limit int) error {
	count, err := cpu.Counts(true)
	if err != nil {
		return fmt.Errorf("cannot count CPUs: %w", err)
	}
	if limit > 0 && limit < count {
		count = limit
	}

	var available uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		available = vm.Available
	}

	board := fmt.Sprintf("ethash light/%s", runtime.Version())
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		board = fmt.Sprintf("%s (%s)", board, infos[0].ModelName)
	}

	for i := 0; i < count; i++ {
		id := hwmon.CPUDeviceID(i)
		d := devices[id]
		d.UniqueID = id
		d.Type = miner.DeviceCpu
		d.Subscription = miner.SubscriptionCpu
		d.BoardName = board
		d.TotalMemory = available
		d.CpuNumber = i
		devices[id] = d
	}
	return nil
}
