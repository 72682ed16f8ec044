package config

import (
	"fmt"
	"time"

	"gitlab.com/TitanInd/hashfarm/internal/farm"
)

var BuildVersion = "0.0.0-dev"

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Devices struct {
		BatchTime   time.Duration `env:"DEVICES_BATCH_TIME"    flag:"batch-time"    desc:"upper bound for a single CPU search batch"`
		CPUCount    int           `env:"DEVICES_CPU_COUNT"     flag:"cpu-count"     validate:"gte=0"                        desc:"number of CPU miners, 0 uses every logical core"`
		CuBlockSize uint          `env:"DEVICES_CU_BLOCK_SIZE" flag:"cu-block-size" validate:"omitempty,oneof=32 64 128 256"`
		CuStreams   uint          `env:"DEVICES_CU_STREAMS"    flag:"cu-streams"    validate:"omitempty,gte=1,lte=4"`
		ClGroupSize uint          `env:"DEVICES_CL_LOCAL_WORK" flag:"cl-local-work" validate:"omitempty,oneof=64 128 256"`
		ClSplit     bool          `env:"DEVICES_CL_SPLIT"      flag:"cl-split"      desc:"split the DAG buffer on OpenCL devices"`
		List        bool          `env:"DEVICES_LIST"          flag:"list-devices"  desc:"print detected devices and exit"`
	}
	Ethash struct {
		Mode        string `env:"ETHASH_MODE"         flag:"ethash-mode"         validate:"omitempty,oneof=normal test" desc:"test mode uses tiny caches, never use it against a real pool"`
		CacheEpochs int    `env:"ETHASH_CACHE_EPOCHS" flag:"ethash-cache-epochs" validate:"gte=0,lte=16"               desc:"light caches kept by the solution verifier"`
	}
	Farm struct {
		CollectInterval time.Duration `env:"FARM_COLLECT_INTERVAL" flag:"collect-interval" desc:"interval between hashrate and sensor collection"`
		ExitOnError     bool          `env:"FARM_EXIT_ON_ERROR"    flag:"exit"             desc:"stop the miner whenever an error is encountered"`
		HwMon           uint          `env:"FARM_HWMON"            flag:"hwmon"            validate:"lte=2"                      desc:"0 - off, 1 - temperature and fan, 2 - temperature, fan and power"`
		Nonce           string        `env:"FARM_NONCE"            flag:"nonce"            validate:"omitempty,hexadecimal,max=8" desc:"hex prefix of the start nonce"`
		RebootDir       string        `env:"FARM_REBOOT_DIR"       flag:"reboot-dir"       validate:"omitempty,dirpath"          desc:"folder with reboot.sh (reboot.bat), defaults to the binary folder"`
		SeqDAG          bool          `env:"FARM_SEQ_DAG"          flag:"seq-dag"          desc:"initialize epochs on one device at a time"`
		TempStart       uint          `env:"FARM_TSTART"           flag:"tstart"           validate:"omitempty,gte=30,lte=100"   desc:"resume mining once temperature drops to this threshold"`
		TempStop        uint          `env:"FARM_TSTOP"            flag:"tstop"            validate:"omitempty,gte=30,lte=100"   desc:"pause mining once temperature reaches this threshold, implies hwmon 1"`
	}
	Simulation struct {
		Enable     bool    `env:"SIMULATION_ENABLE"     flag:"simulation"            desc:"mine against a local simulated pool"`
		Block      int     `env:"SIMULATION_BLOCK"      flag:"simulation-block"      validate:"gte=0"          desc:"block number of the simulated work"`
		Difficulty float64 `env:"SIMULATION_DIFFICULTY" flag:"simulation-difficulty" validate:"omitempty,gt=0" desc:"share difficulty of the simulated pool"`
	}
	Log struct {
		Color      bool   `env:"LOG_COLOR"       flag:"log-color"`
		FilePath   string `env:"LOG_FILE_PATH"   flag:"log-file-path"   validate:"omitempty,filepath" desc:"enables file logging"`
		IsProd     bool   `env:"LOG_IS_PROD"     flag:"log-is-prod"     desc:"affects the format of the log output"`
		JSON       bool   `env:"LOG_JSON"        flag:"log-json"`
		LevelApp   string `env:"LOG_LEVEL_APP"   flag:"log-level-app"   validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelFarm  string `env:"LOG_LEVEL_FARM"  flag:"log-level-farm"  validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelMiner string `env:"LOG_LEVEL_MINER" flag:"log-level-miner" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelPool  string `env:"LOG_LEVEL_POOL"  flag:"log-level-pool"  validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelAPI   string `env:"LOG_LEVEL_API"   flag:"log-level-api"   validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Web struct {
		Address  string `env:"WEB_ADDRESS"   flag:"web-address"   validate:"omitempty,hostname_port" desc:"http server address host:port, empty disables the api"`
		ReadOnly bool   `env:"WEB_READ_ONLY" flag:"web-read-only" desc:"reject requests that change miner state"`
	}
}

func (cfg *Config) SetDefaults() {
	// Devices

	if cfg.Devices.BatchTime == 0 {
		cfg.Devices.BatchTime = 250 * time.Millisecond
	}

	// Ethash

	if cfg.Ethash.Mode == "" {
		cfg.Ethash.Mode = "normal"
	}
	if cfg.Ethash.CacheEpochs == 0 {
		cfg.Ethash.CacheEpochs = 3
	}

	// Farm

	if cfg.Farm.CollectInterval == 0 {
		cfg.Farm.CollectInterval = 5 * time.Second
	}
	if cfg.Farm.TempStart == 0 {
		cfg.Farm.TempStart = 40
	}
	// a stop threshold is useless without sensors
	if cfg.Farm.TempStop != 0 && cfg.Farm.HwMon == 0 {
		cfg.Farm.HwMon = 1
	}

	// Simulation

	if cfg.Simulation.Difficulty == 0 {
		cfg.Simulation.Difficulty = 1
	}

	// Log

	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "debug"
	}
	if cfg.Log.LevelFarm == "" {
		cfg.Log.LevelFarm = "info"
	}
	if cfg.Log.LevelMiner == "" {
		cfg.Log.LevelMiner = "info"
	}
	if cfg.Log.LevelPool == "" {
		cfg.Log.LevelPool = "info"
	}
	if cfg.Log.LevelAPI == "" {
		cfg.Log.LevelAPI = "info"
	}
}

// Validate checks rules spanning several fields, tags cover the rest
func (cfg *Config) Validate() error {
	if err := farm.ValidateThresholds(cfg.Farm.TempStart, cfg.Farm.TempStop); err != nil {
		return fmt.Errorf("%w: tstart %d, tstop %d", err, cfg.Farm.TempStart, cfg.Farm.TempStop)
	}
	return nil
}

// GetSanitized returns a copy of the config safe to expose over the api
func (cfg *Config) GetSanitized() interface{} {
	publicCfg := *cfg
	publicCfg.Log.FilePath = ""
	return publicCfg
}
