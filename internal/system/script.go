package system

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

var (
	ErrScriptMissing       = errors.New("script not found")
	ErrScriptEmpty         = errors.New("script is empty")
	ErrScriptNotExecutable = errors.New("script is not executable")
)

// ScriptName returns the platform file name of a script, e.g. reboot.sh or reboot.bat
func ScriptName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".bat"
	}
	return base + ".sh"
}

// BinaryDir is the folder of the running executable
func BinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// CheckScript verifies the script exists, is not empty and can be executed
func CheckScript(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrScriptMissing, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrScriptEmpty, path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrScriptNotExecutable, path)
	}
	return nil
}

// Spawn starts the script and returns without waiting for it to finish
func Spawn(path string, arg ...string) error {
	if err := CheckScript(path); err != nil {
		return err
	}
	cmd := exec.Command(path, arg...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
