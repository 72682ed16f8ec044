package system

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ScriptName("reboot"))
	require.True(t, strings.HasSuffix(path, "reboot.sh"))

	require.ErrorIs(t, CheckScript(path), ErrScriptMissing)
	require.ErrorIs(t, CheckScript(dir), ErrScriptMissing)

	require.NoError(t, os.WriteFile(path, nil, 0o755))
	require.ErrorIs(t, CheckScript(path), ErrScriptEmpty)

	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))
	require.ErrorIs(t, CheckScript(path), ErrScriptNotExecutable)

	require.NoError(t, os.Chmod(path, 0o755))
	require.NoError(t, CheckScript(path))
}
