package mining

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// MeetsBoundary compares both hashes as big-endian unsigned integers
func MeetsBoundary(value, boundary common.Hash) bool {
	v := new(uint256.Int).SetBytes32(value[:])
	b := new(uint256.Int).SetBytes32(boundary[:])
	return !v.Gt(b)
}

// TargetFromDifficulty returns 2^256/difficulty, saturated to the largest hash
func TargetFromDifficulty(difficulty float64) common.Hash {
	if difficulty <= 1 || math.IsNaN(difficulty) {
		return common.Hash(new(uint256.Int).SetAllOne().Bytes32())
	}

	quo, _ := new(big.Float).Quo(new(big.Float).SetInt(two256), big.NewFloat(difficulty)).Int(nil)
	target, overflow := uint256.FromBig(quo)
	if overflow {
		target = new(uint256.Int).SetAllOne()
	}
	return common.Hash(target.Bytes32())
}

// DifficultyFromTarget returns the expected number of hashes needed to meet target
func DifficultyFromTarget(target common.Hash) float64 {
	t := new(big.Int).SetBytes(target[:])
	if t.Sign() == 0 {
		return math.Inf(1)
	}
	d, _ := new(big.Float).Quo(new(big.Float).SetInt(two256), new(big.Float).SetInt(t)).Float64()
	return d
}
