package ethash

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	EpochLength = 30000

	datasetInitBytes   = 1 << 30
	datasetGrowthBytes = 1 << 23
	cacheInitBytes     = 1 << 24
	cacheGrowthBytes   = 1 << 17
	mixBytes           = 128
	hashBytes          = 64
	hashWords          = 16
	datasetParents     = 256
	cacheRounds        = 3
	loopAccesses       = 64

	testCacheBytes   = 1024
	testDatasetBytes = 32 * 1024
)

var ErrUnknownMode = errors.New("unknown ethash mode")

// Mode selects the cache and dataset sizing
type Mode uint8

const (
	ModeNormal Mode = iota
	// ModeTest uses tiny caches, results are not valid on any real chain
	ModeTest
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "normal":
		return ModeNormal, nil
	case "test":
		return ModeTest, nil
	}
	return ModeNormal, fmt.Errorf("%w: %s", ErrUnknownMode, s)
}

func (m Mode) String() string {
	if m == ModeTest {
		return "test"
	}
	return "normal"
}

func EpochOf(block int) int {
	return block / EpochLength
}

// CacheSize returns the light cache size in bytes for the epoch
func CacheSize(epoch int, mode Mode) uint64 {
	if mode == ModeTest {
		return testCacheBytes
	}
	size := cacheInitBytes + cacheGrowthBytes*uint64(epoch) - hashBytes
	for !new(big.Int).SetUint64(size / hashBytes).ProbablyPrime(1) {
		size -= 2 * hashBytes
	}
	return size
}

// DatasetSize returns the full DAG size in bytes for the epoch
func DatasetSize(epoch int, mode Mode) uint64 {
	if mode == ModeTest {
		return testDatasetBytes
	}
	size := datasetInitBytes + datasetGrowthBytes*uint64(epoch) - mixBytes
	for !new(big.Int).SetUint64(size / mixBytes).ProbablyPrime(1) {
		size -= 2 * mixBytes
	}
	return size
}
