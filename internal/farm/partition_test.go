package farm

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"pgregory.net/rapid"
)

func fixedRandom(v uint64) func() uint64 {
	return func() uint64 { return v }
}

func TestPlanNoncesTwoDevices(t *testing.T) {
	plan, err := PlanNonces(2, "", mining.NewEmptyWorkPackage(), fixedRandom(0))
	require.NoError(t, err)
	require.EqualValues(t, 63, plan.SegmentBits)
	require.EqualValues(t, 0, plan.Start(0))
	require.EqualValues(t, uint64(1)<<63, plan.Start(1))
}

func TestPlanNoncesSingleDevice(t *testing.T) {
	plan, err := PlanNonces(1, "", mining.NewEmptyWorkPackage(), fixedRandom(42))
	require.NoError(t, err)
	require.EqualValues(t, 64, plan.SegmentBits)
	require.EqualValues(t, 42, plan.Start(0))
}

func TestPlanNoncesPrefix(t *testing.T) {
	plan, err := PlanNonces(2, "a", mining.NewEmptyWorkPackage(), fixedRandom(0))
	require.NoError(t, err)
	require.EqualValues(t, 59, plan.SegmentBits)
	require.EqualValues(t, uint64(0xa)<<60, plan.Start(0))
	require.EqualValues(t, uint64(0xa)<<60+uint64(1)<<59, plan.Start(1))
}

func TestPlanNoncesInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"xyz", "123456789"} {
		_, err := PlanNonces(2, prefix, mining.NewEmptyWorkPackage(), fixedRandom(0))
		require.ErrorIs(t, err, ErrInvalidNonce, prefix)
	}
}

func TestPlanNoncesCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 64).Draw(t, "count")
		base := rapid.Uint64().Draw(t, "base")

		plan, err := PlanNonces(count, "", mining.NewEmptyWorkPackage(), fixedRandom(base))
		if err != nil {
			t.Fatal(err)
		}
		// count segments of 2^bits fit in the nonce space
		if uint64(count-1) > math.MaxUint64>>plan.SegmentBits {
			t.Fatalf("%d segments of %d bits overflow", count, plan.SegmentBits)
		}
		if plan.Start(0) != base {
			t.Fatalf("first segment starts at %d, want %d", plan.Start(0), base)
		}
		for i := 1; i < count; i++ {
			if plan.Start(i)-plan.Start(i-1) != uint64(1)<<plan.SegmentBits {
				t.Fatalf("segment %d is not contiguous", i)
			}
		}
		// no space is left unused beyond one segment
		if count > 1 && uint64(2*count-1) <= math.MaxUint64>>plan.SegmentBits {
			t.Fatalf("segments of %d bits are too small for %d devices", plan.SegmentBits, count)
		}
	})
}

func TestPlanNoncesKeepsPrefix(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 64).Draw(t, "count")
		prefix := rapid.StringMatching(`[0-9a-f]{1,8}`).Draw(t, "prefix")
		value, _ := strconv.ParseUint(prefix, 16, 64)

		plan, err := PlanNonces(count, prefix, mining.NewEmptyWorkPackage(), fixedRandom(0))
		if err != nil {
			t.Fatal(err)
		}
		shift := 64 - 4*len(prefix)
		for i := 0; i < count; i++ {
			if plan.Start(i)>>shift != value {
				t.Fatalf("segment %d start %#x lost prefix %s", i, plan.Start(i), prefix)
			}
		}
	})
}

func TestPlanNoncesKeepsExtranonce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 64).Draw(t, "count")
		exBits := rapid.IntRange(1, 24).Draw(t, "exBits")
		ex := rapid.Uint64Range(0, uint64(1)<<exBits-1).Draw(t, "ex")

		work := mining.NewEmptyWorkPackage()
		work.ExSizeBits = uint8(exBits)
		work.StartNonce = ex << (64 - exBits)

		plan, err := PlanNonces(count, "", work, fixedRandom(0))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < count; i++ {
			if plan.Start(i)>>(64-exBits) != ex {
				t.Fatalf("segment %d start %#x lost extranonce %#x", i, plan.Start(i), ex)
			}
		}
	})
}
