package types

import (
	"os"
	"runtime"
)

// Environment describes the host a module is resolved against
type Environment struct {
	// Home is the user's home directory; the default deployment base
	Home string
	// WorkDir anchors relative bases
	WorkDir string
	// OS is a GOOS value used for entry filtering
	OS string
}

// CurrentEnvironment reads the environment of the running process
func CurrentEnvironment() (Environment, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
		if home == "" {
			return Environment{}, err
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return Environment{}, err
	}
	return Environment{Home: home, WorkDir: wd, OS: runtime.GOOS}, nil
}
