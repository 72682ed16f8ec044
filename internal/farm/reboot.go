package farm

import (
	"path/filepath"

	"gitlab.com/TitanInd/hashfarm/internal/system"
)

// Reboot launches the reboot script with args and does not wait for it.
// Returns false when the script is missing, empty or not executable
func (f *Farm) Reboot(args ...string) bool {
	dir := f.settingsSnapshot().RebootDir
	if dir == "" {
		dir = system.BinaryDir()
	}
	path := filepath.Join(dir, system.ScriptName("reboot"))

	if err := system.Spawn(path, args...); err != nil {
		f.log.Debugf("reboot not possible: %s", err)
		return false
	}
	f.log.Infof("launched %s %v", path, args)
	return true
}
