// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces ConfigDir() when set. Tests use it because
// os.UserHomeDir() ignores HOME on some platforms.
var configDirOverride string

// Reset clears the config directory override.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir() return dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
