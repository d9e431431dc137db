package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/confman/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigFile points at an explicit config file
	EnvConfigFile = "CONFMAN_CONFIG"

	// EnvConfigDir overrides the XDG config directory for confman
	EnvConfigDir = "CONFMAN_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for confman
	EnvCacheDir = "CONFMAN_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for confman
	EnvStateDir = "CONFMAN_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside confman's directories. These are not user-configurable.
const (
	// AppDirName is the directory name used under each XDG base
	AppDirName = "confman"

	// SourcesDir is the cache subdirectory holding fetched module sources
	SourcesDir = "sources"

	// LogFileName is the name of the log file
	LogFileName = "confman.log"
)

// ConfigFileNames are tried in order inside the config directory.
var ConfigFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// Paths resolves confman's working directories
type Paths interface {
	ConfigDir() string
	CacheDir() string
	StateDir() string
	SourcesDir() string
	SourceCachePath(key string) string
	LogFilePath() string
	ConfigFileCandidates() []string
	FindConfigFile(explicit string) string
}

type paths struct {
	configDir string
	cacheDir  string
	stateDir  string
}

// New creates a Paths instance from the environment.
func New() (Paths, error) {
	xdg.Reload()

	home, err := GetHomeDirectory()
	if err != nil {
		return nil, err
	}

	p := &paths{
		configDir: dirFromEnv(EnvConfigDir, filepath.Join(xdg.ConfigHome, AppDirName)),
		cacheDir:  dirFromEnv(EnvCacheDir, filepath.Join(xdg.CacheHome, AppDirName)),
	}

	// xdg.StateHome exists but falls back differently on darwin; keep ~/.local/state everywhere
	stateBase := os.Getenv("XDG_STATE_HOME")
	if stateBase == "" {
		stateBase = filepath.Join(home, ".local", "state")
	}
	p.stateDir = dirFromEnv(EnvStateDir, filepath.Join(stateBase, AppDirName))

	for _, dir := range []*string{&p.configDir, &p.cacheDir, &p.stateDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// NewWithDirs builds a Paths instance from explicit directories. Used by tests
// and by callers that already resolved their layout.
func NewWithDirs(configDir, cacheDir, stateDir string) Paths {
	return &paths{
		configDir: ExpandHome(configDir),
		cacheDir:  ExpandHome(cacheDir),
		stateDir:  ExpandHome(stateDir),
	}
}

func dirFromEnv(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return ExpandHome(dir)
	}
	return fallback
}

func (p *paths) ConfigDir() string { return p.configDir }

func (p *paths) CacheDir() string { return p.cacheDir }

func (p *paths) StateDir() string { return p.stateDir }

// SourcesDir returns the root under which remote sources are cloned
func (p *paths) SourcesDir() string {
	return filepath.Join(p.cacheDir, SourcesDir)
}

// SourceCachePath maps a slash-separated cache key (host/owner/repo) to its clone directory
func (p *paths) SourceCachePath(key string) string {
	return filepath.Join(p.SourcesDir(), filepath.FromSlash(key))
}

// LogFilePath returns the path to the confman log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ConfigFileCandidates lists default config file locations in lookup order
func (p *paths) ConfigFileCandidates() []string {
	candidates := make([]string, 0, len(ConfigFileNames))
	for _, name := range ConfigFileNames {
		candidates = append(candidates, filepath.Join(p.configDir, name))
	}
	return candidates
}

// FindConfigFile picks the config file to load. An explicit path wins, then
// $CONFMAN_CONFIG, then the first existing default candidate. Returns "" when
// nothing applies.
func (p *paths) FindConfigFile(explicit string) string {
	if explicit != "" {
		return ExpandHome(explicit)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return ExpandHome(env)
	}
	for _, candidate := range p.ConfigFileCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory.
// ~user forms are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// IsHomeRelative reports whether path starts with the ~ component
func IsHomeRelative(path string) bool {
	return path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator))
}

// GetHomeDirectory returns the user's home directory
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
