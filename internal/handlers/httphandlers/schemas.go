package httphandlers

import (
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
)

type ConfigResponse struct {
	Version string
	Config  interface{}
}

type TelemetryResponse struct {
	Summary       string
	UptimeSeconds int
	Uptime        string
	Hashrate      string
	Telemetry     farm.Telemetry
}

type MinersResponse struct {
	IsMining bool
	Paused   bool
	Hashrate float64
	Miners   []Miner
}

type Miner struct {
	Index             int
	Name              string
	UniqueID          string
	BoardName         string
	Subscription      string
	State             string
	Epoch             int
	Initialized       bool
	Paused            bool
	PauseReasons      string `json:",omitempty"`
	Hashrate          float64
	EffectiveHashrate float64
	EffectiveLong     float64
	VerifiedSolutions uint64
	Sensors           *hwmon.Sensors `json:",omitempty"`
	Solutions         farm.SolutionAccount
}

type NonceRequest struct {
	Nonce string `json:"nonce" binding:"omitempty,hexadecimal,max=8"`
}

type ThresholdsRequest struct {
	TStart uint `json:"tstart" binding:"omitempty,gte=30,lte=100"`
	TStop  uint `json:"tstop"  binding:"omitempty,gte=30,lte=100"`
}
