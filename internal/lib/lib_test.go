package lib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestWrapErrorMatchesBoth(t *testing.T) {
	cause := errors.New("cause")
	err := WrapError(errSentinel, cause)

	require.ErrorIs(t, err, errSentinel)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "sentinel: cause", err.Error())
	require.Equal(t, errSentinel, WrapError(errSentinel, nil))
}

func TestFormatHashes(t *testing.T) {
	require.Equal(t, "0 h", FormatHashes(0))
	require.Equal(t, "999 h", FormatHashes(999))
	require.Equal(t, "12.5 Mh", FormatHashes(12.5e6))
	require.Equal(t, "1.23 kh", FormatHashes(1234))
}

func TestAlmostEqual(t *testing.T) {
	require.True(t, AlmostEqual(100.0, 104.0, 0.05))
	require.False(t, AlmostEqual(100.0, 106.0, 0.05))
	require.True(t, AlmostEqual(0, 0, 0.01))
}

func TestPollReturnsLastError(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 30*time.Millisecond, func() error {
		calls++
		return errSentinel
	}, 10*time.Millisecond)

	require.ErrorIs(t, err, errSentinel)
	require.Greater(t, calls, 1)

	calls = 0
	err = Poll(context.Background(), time.Second, func() error {
		calls++
		if calls < 3 {
			return errSentinel
		}
		return nil
	}, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}
