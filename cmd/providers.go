package main

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gitlab.com/TitanInd/hashfarm/internal/config"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/handlers/httphandlers"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/metrics"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
	"gitlab.com/TitanInd/hashfarm/internal/miner/cpu"
	"gitlab.com/TitanInd/hashfarm/internal/pool/simulate"
)

type WebAddress string

func provideMode(cfg *config.Config) (ethash.Mode, error) {
	return ethash.ParseMode(cfg.Ethash.Mode)
}

func provideDevices(cfg *config.Config) (map[string]miner.DeviceDescriptor, error) {
	devices := make(map[string]miner.DeviceDescriptor)
	if err := cpu.EnumDevices(devices, cfg.Devices.CPUCount); err != nil {
		return nil, err
	}
	return devices, nil
}

func sortedIDs(devices map[string]miner.DeviceDescriptor) []string {
	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func provideVerifier(cfg *config.Config, mode ethash.Mode, loggers Loggers) *ethash.Verifier {
	return ethash.NewVerifier(mode, cfg.Ethash.CacheEpochs, loggers.Farm.Named("VERIFIER"))
}

func provideMonitors(cfg *config.Config, devices map[string]miner.DeviceDescriptor) []hwmon.Monitor {
	if cfg.Farm.HwMon == 0 {
		return nil
	}
	monitors := []hwmon.Monitor{hwmon.NewCPUMonitor(len(devices))}
	if amd := hwmon.NewAmdSysfs(hwmon.DefaultDrmRoot); amd.Count() > 0 {
		monitors = append(monitors, amd)
	}
	return monitors
}

func provideBackendFactory(cfg *config.Config, loggers Loggers) farm.BackendFactory {
	return func(index int, d miner.DeviceDescriptor) (miner.Backend, error) {
		switch d.Subscription {
		case miner.SubscriptionCpu:
			name := fmt.Sprintf("%s%d", d.Subscription.Prefix(), index)
			return cpu.NewBackend(cfg.Devices.BatchTime, loggers.Miner.Named(name)), nil
		}
		return nil, fmt.Errorf("%w: %s", farm.ErrUnsupportedDevice, d.Subscription)
	}
}

func provideSettings(cfg *config.Config, mode ethash.Mode) farm.Settings {
	return farm.Settings{
		Mode:            mode,
		HwMon:           cfg.Farm.HwMon,
		TempStart:       cfg.Farm.TempStart,
		TempStop:        cfg.Farm.TempStop,
		Nonce:           cfg.Farm.Nonce,
		CollectInterval: cfg.Farm.CollectInterval,
		ExitOnError:     cfg.Farm.ExitOnError,
		SeqDAG:          cfg.Farm.SeqDAG,
		RebootDir:       cfg.Farm.RebootDir,
		CuBlockSize:     cfg.Devices.CuBlockSize,
		CuStreams:       cfg.Devices.CuStreams,
		ClGroupSize:     cfg.Devices.ClGroupSize,
		ClSplit:         cfg.Devices.ClSplit,
	}
}

func provideFarm(
	devices map[string]miner.DeviceDescriptor,
	settings farm.Settings,
	backends farm.BackendFactory,
	monitors []hwmon.Monitor,
	verifier *ethash.Verifier,
	loggers Loggers,
	onFatal FatalHandler,
) *farm.Farm {
	return farm.NewFarm(devices, settings, backends, monitors, verifier, loggers.Farm, loggers.Miner, onFatal)
}

func provideSimulation(cfg *config.Config, f *farm.Farm, verifier *ethash.Verifier, loggers Loggers) *simulate.Client {
	if !cfg.Simulation.Enable {
		return nil
	}
	return simulate.NewClient(cfg.Simulation.Block, cfg.Simulation.Difficulty, f, verifier, loggers.Pool)
}

func provideRegistry(f *farm.Farm) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		metrics.NewFarmCollector(f),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func provideHTTPHandler(cfg *config.Config, f *farm.Farm, registry *prometheus.Registry, loggers Loggers) *gin.Engine {
	return httphandlers.NewHTTPHandler(f, cfg, registry, cfg.Web.ReadOnly, loggers.API)
}

func provideWebAddress(cfg *config.Config) WebAddress {
	return WebAddress(cfg.Web.Address)
}
