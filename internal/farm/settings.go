package farm

import (
	"errors"
	"time"

	"gitlab.com/TitanInd/hashfarm/internal/ethash"
)

const (
	DefaultCollectInterval = 5 * time.Second
	DefaultStopTimeout     = 10 * time.Second
)

var (
	ErrTempThresholds = errors.New("tstop must be greater than tstart, both within 30..100")
	ErrInvalidNonce   = errors.New("nonce prefix must be at most 8 hexadecimal digits")
	ErrHungDevice     = errors.New("device stopped responding")
)

type Settings struct {
	Mode            ethash.Mode
	HwMon           uint // 0 off, 1 temperature and fan, 2 adds power
	TempStart       uint
	TempStop        uint // 0 disables the overheat policy
	Nonce           string
	CollectInterval time.Duration
	StopTimeout     time.Duration // per device, a hung device is abandoned after it
	ExitOnError     bool
	SeqDAG          bool
	RebootDir       string // where reboot.sh is looked up, the binary directory if empty

	CuBlockSize uint
	CuStreams   uint
	ClGroupSize uint
	ClSplit     bool
}

func (s *Settings) setDefaults() {
	if s.CollectInterval == 0 {
		s.CollectInterval = DefaultCollectInterval
	}
	if s.StopTimeout == 0 {
		s.StopTimeout = DefaultStopTimeout
	}
	if s.TempStop != 0 && s.HwMon == 0 {
		s.HwMon = 1
	}
}

// ValidateThresholds accepts tstop 0 (policy off) or 30 <= tstart < tstop <= 100
func ValidateThresholds(tstart, tstop uint) error {
	if tstop == 0 {
		return nil
	}
	if tstart < 30 || tstop > 100 || tstop <= tstart {
		return ErrTempThresholds
	}
	return nil
}
