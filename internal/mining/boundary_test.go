package mining

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
)

func TestMeetsBoundary(t *testing.T) {
	boundary := common.HexToHash("0x00000000ffff0000000000000000000000000000000000000000000000000000")

	require.True(t, MeetsBoundary(boundary, boundary))
	require.True(t, MeetsBoundary(common.HexToHash("0x00000000fffe"), boundary))
	require.False(t, MeetsBoundary(common.HexToHash("0x0000000100000000000000000000000000000000000000000000000000000000"), boundary))
}

func TestTargetFromDifficulty(t *testing.T) {
	require.Equal(t, common.HexToHash("0x8000000000000000000000000000000000000000000000000000000000000000"), TargetFromDifficulty(2))
	require.Equal(t, common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"), TargetFromDifficulty(1))
	require.Equal(t, common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"), TargetFromDifficulty(0.5))

	diff := 4_000_000_000.0
	require.True(t, lib.AlmostEqual(diff, DifficultyFromTarget(TargetFromDifficulty(diff)), 1e-9))
}

func TestWorkPackageVoid(t *testing.T) {
	w := WorkPackage{Header: common.HexToHash("0x01"), Epoch: 3}
	require.False(t, w.IsEmpty())

	w.Void()
	require.True(t, w.IsEmpty())
	require.Equal(t, 3, w.Epoch)
	require.Equal(t, "void", w.String())

	empty := NewEmptyWorkPackage()
	require.True(t, empty.IsEmpty())
	require.Equal(t, -1, empty.Epoch)
}
