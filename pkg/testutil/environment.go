// pkg/testutil/environment.go
// DEPENDENCIES: filesystem, paths, types
// PURPOSE: Orchestrate test environments with proper dependencies

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confman/pkg/filesystem"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides directories and dependencies for one test
type TestEnvironment struct {
	// Root holds every other directory
	Root string
	// SourceRoot is a place for module sources
	SourceRoot string
	HomeDir    string
	ConfigDir  string
	CacheDir   string
	StateDir   string

	FS    types.FS
	Paths paths.Paths
	// Env is the host description modules resolve against
	Env types.Environment

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}
	switch envType {
	case EnvMemoryOnly:
		env.Root = "/virtual"
		env.FS = filesystem.NewMemory()
	default:
		env.Root = t.TempDir()
		env.FS = filesystem.NewOS()
	}

	env.SourceRoot = filepath.Join(env.Root, "sources")
	env.HomeDir = filepath.Join(env.Root, "home")
	env.ConfigDir = filepath.Join(env.Root, "config")
	env.CacheDir = filepath.Join(env.Root, "cache")
	env.StateDir = filepath.Join(env.Root, "state")

	for _, dir := range []string{env.SourceRoot, env.HomeDir} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	env.Paths = paths.NewWithDirs(env.ConfigDir, env.CacheDir, env.StateDir)
	env.Env = types.Environment{Home: env.HomeDir, WorkDir: env.Root, OS: "linux"}

	if envType == EnvIsolated {
		t.Setenv("HOME", env.HomeDir)
		t.Setenv(paths.EnvConfigFile, "")
		t.Setenv(paths.EnvConfigDir, env.ConfigDir)
		t.Setenv(paths.EnvCacheDir, env.CacheDir)
		t.Setenv(paths.EnvStateDir, env.StateDir)
		t.Setenv("CONFMAN_LINK_MODE", "")
	}
	return env
}

// SourceFile writes a file into the source tree of module dir and returns
// its absolute path
func (env *TestEnvironment) SourceFile(module, rel, content string) string {
	env.t.Helper()

	path := filepath.Join(env.SourceRoot, module, filepath.FromSlash(rel))
	if err := env.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := env.FS.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ModuleDir returns the source directory of module
func (env *TestEnvironment) ModuleDir(module string) string {
	return filepath.Join(env.SourceRoot, module)
}

// Home joins rel onto the home directory
func (env *TestEnvironment) Home(rel string) string {
	return filepath.Join(env.HomeDir, filepath.FromSlash(rel))
}

// WriteConfig writes content as config.yaml in the config directory
func (env *TestEnvironment) WriteConfig(content string) string {
	env.t.Helper()

	path := filepath.Join(env.ConfigDir, paths.ConfigFileNames[0])
	if err := env.FS.MkdirAll(env.ConfigDir, 0755); err != nil {
		env.t.Fatalf("Failed to create %s: %v", env.ConfigDir, err)
	}
	if err := env.FS.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
