package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
)

func TestLoadConfigFlags(t *testing.T) {
	var cfg Config
	args := []string{"hashfarm", "--tstop", "70", "--nonce", "a1", "--simulation=true", "--ethash-mode", "test"}

	require.NoError(t, LoadConfig(&cfg, &args))
	require.EqualValues(t, 70, cfg.Farm.TempStop)
	require.EqualValues(t, 40, cfg.Farm.TempStart)
	require.EqualValues(t, 1, cfg.Farm.HwMon, "tstop implies hwmon")
	require.Equal(t, "a1", cfg.Farm.Nonce)
	require.True(t, cfg.Simulation.Enable)
	require.Equal(t, "test", cfg.Ethash.Mode)
	require.Equal(t, 5*time.Second, cfg.Farm.CollectInterval)
}

func TestLoadConfigRejectsInvertedThresholds(t *testing.T) {
	var cfg Config
	args := []string{"hashfarm", "--tstart", "60", "--tstop", "50"}

	err := LoadConfig(&cfg, &args)
	require.ErrorIs(t, err, ErrConfigValidation)
	require.ErrorIs(t, err, farm.ErrTempThresholds)
}

func TestLoadConfigRejectsOutOfRangeThreshold(t *testing.T) {
	var cfg Config
	args := []string{"hashfarm", "--tstop", "120"}

	require.ErrorIs(t, LoadConfig(&cfg, &args), ErrConfigValidation)
}

func TestLoadConfigRejectsBadNonce(t *testing.T) {
	var cfg Config
	args := []string{"hashfarm", "--nonce", "xyz"}

	require.ErrorIs(t, LoadConfig(&cfg, &args), ErrConfigValidation)
}

func TestValidateKeepsHwmonLevel(t *testing.T) {
	var cfg Config
	cfg.Farm.HwMon = 2
	cfg.Farm.TempStop = 80
	cfg.SetDefaults()

	require.NoError(t, cfg.Validate())
	require.EqualValues(t, 2, cfg.Farm.HwMon)
}
