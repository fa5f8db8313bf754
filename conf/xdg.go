package conf

import (
	"os"
	"path/filepath"
)

const appName = "arena"

// Dirs holds the XDG base directories arena keeps its files in.
type Dirs struct {
	Config  string
	State   string
	Runtime string
}

// ResolveDirs follows the XDG Base Directory Specification, falling back to
// the documented defaults when a variable is unset.
func ResolveDirs() Dirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}

	// the runtime dir is wiped on logout/reboot, which is what the
	// post-login redirect needs
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(os.TempDir(), appName+"-runtime-"+os.Getenv("USER"))
	}

	return Dirs{
		Config:  filepath.Join(configHome, appName),
		State:   filepath.Join(stateHome, appName),
		Runtime: filepath.Join(runtimeDir, appName),
	}
}

// EnsureDir creates the directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
