package miner

import "gitlab.com/TitanInd/hashfarm/internal/hwmon"

type DeviceType uint8

const (
	DeviceUnknown DeviceType = iota
	DeviceCpu
	DeviceGpu
	DeviceAccelerator
)

func (t DeviceType) String() string {
	switch t {
	case DeviceCpu:
		return "Cpu"
	case DeviceGpu:
		return "Gpu"
	case DeviceAccelerator:
		return "Accelerator"
	}
	return "Unknown"
}

// Subscription is the backend a device is assigned to
type Subscription uint8

const (
	SubscriptionNone Subscription = iota
	SubscriptionOpenCL
	SubscriptionCuda
	SubscriptionCpu
)

// Prefix is the short label used in telemetry, e.g. cp0
func (s Subscription) Prefix() string {
	switch s {
	case SubscriptionOpenCL:
		return "cl"
	case SubscriptionCuda:
		return "cu"
	case SubscriptionCpu:
		return "cp"
	}
	return "--"
}

func (s Subscription) String() string {
	switch s {
	case SubscriptionOpenCL:
		return "OpenCL"
	case SubscriptionCuda:
		return "CUDA"
	case SubscriptionCpu:
		return "CPU"
	}
	return "None"
}

type ClPlatform uint8

const (
	ClPlatformUnknown ClPlatform = iota
	ClPlatformAmd
	ClPlatformClover
	ClPlatformNvidia
	ClPlatformIntel
)

// DeviceDescriptor describes a detected device, keyed by UniqueID (the PCI id for GPUs)
type DeviceDescriptor struct {
	UniqueID     string       `json:"uniqueId"`
	Type         DeviceType   `json:"-"`
	Subscription Subscription `json:"-"`
	TotalMemory  uint64       `json:"totalMemory"`
	BoardName    string       `json:"boardName"`

	CpuNumber int `json:"cpuNumber,omitempty"`

	CuBlockSize  uint `json:"cuBlockSize,omitempty"`
	CuStreamSize uint `json:"cuStreamSize,omitempty"`

	ClPlatform  ClPlatform `json:"-"`
	ClGroupSize uint       `json:"clGroupSize,omitempty"`
	ClSplit     bool       `json:"clSplit,omitempty"`
}

// HwmonInfo returns the sensor binding of the device, not yet mapped to a monitor index
func (d DeviceDescriptor) HwmonInfo() hwmon.Info {
	info := hwmon.Info{PciID: d.UniqueID, Index: hwmon.IndexUnmapped}
	switch d.Subscription {
	case SubscriptionCpu:
		info.Type = hwmon.Cpu
	case SubscriptionCuda:
		info.Type = hwmon.Nvidia
	case SubscriptionOpenCL:
		switch d.ClPlatform {
		case ClPlatformNvidia:
			info.Type = hwmon.Nvidia
		case ClPlatformAmd:
			info.Type = hwmon.Amd
		}
	}
	return info
}
