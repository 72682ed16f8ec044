package farm

import (
	"math/bits"
	"strconv"

	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

const maxNoncePrefixLen = 8

// NoncePlan splits the 64-bit nonce space into equal contiguous segments, one per device
type NoncePlan struct {
	Base        uint64
	SegmentBits uint
}

// Start returns the first nonce of segment i
func (p NoncePlan) Start(i int) uint64 {
	return p.Base + uint64(i)<<p.SegmentBits
}

// PlanNonces derives the segments for count devices. A user prefix fixes the
// top nibbles, otherwise a pool extranonce keeps the pool start nonce, otherwise
// the base is random
func PlanNonces(count int, prefix string, work mining.WorkPackage, random func() uint64) (NoncePlan, error) {
	if count < 1 {
		count = 1
	}
	segmentBits := uint(64 - bits.Len(uint(count-1)))

	switch {
	case prefix != "":
		value, err := parseNoncePrefix(prefix)
		if err != nil {
			return NoncePlan{}, err
		}
		prefixBits := uint(4 * len(prefix))
		if prefixBits >= segmentBits {
			return NoncePlan{}, ErrInvalidNonce
		}
		return NoncePlan{
			Base:        value << (64 - prefixBits),
			SegmentBits: segmentBits - prefixBits,
		}, nil
	case work.ExSizeBits > 0:
		exBits := uint(work.ExSizeBits)
		if exBits >= segmentBits {
			exBits = segmentBits - 1
		}
		return NoncePlan{Base: work.StartNonce, SegmentBits: segmentBits - exBits}, nil
	default:
		return NoncePlan{Base: random(), SegmentBits: segmentBits}, nil
	}
}

func parseNoncePrefix(prefix string) (uint64, error) {
	if len(prefix) > maxNoncePrefixLen {
		return 0, ErrInvalidNonce
	}
	value, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return 0, lib.WrapError(ErrInvalidNonce, err)
	}
	return value, nil
}
