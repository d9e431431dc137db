package confman

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Deploy configuration files from module sources"
	MsgInitShort    = "Create a starter config or clone a config repository"
	MsgFetchShort   = "Fetch module sources without deploying"
	MsgApplyShort   = "Deploy modules to their destinations"
	MsgInfoShort    = "Summarize the loaded configuration"
	MsgCleanShort   = "Remove deployed files of modules"
	MsgResetShort   = "Clean everything and remove fetched sources"
	MsgStatusShort  = "Show the state of deployed files"
	MsgVersionShort = "Print version information"

	// Status messages
	MsgConfigExists     = "Config already exists at %s\n"
	MsgConfigCreated    = "Created %s\n"
	MsgRepoCloned       = "Cloned %s into %s\n"
	MsgRepoNoConfig     = "Warning: %s has no config.yaml, config.yml or config.toml\n"
	MsgResetConfirm     = "Remove every deployed file and all fetched sources?"
	MsgResetConfirmFull = "Remove every deployed file, all fetched sources and confman's state?"
	MsgResetAborted     = "Reset aborted."

	// Error messages
	MsgErrNoCommand    = "no command specified"
	MsgErrInitNotEmpty = "config directory %s is not empty"
	MsgErrInitNotGit   = "%s is not a git repository source"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagQuiet     = "Only print errors"
	MsgFlagConfig    = "Config file (default $XDG_CONFIG_HOME/confman/config.yaml)"
	MsgFlagVersion   = "Print version and exit"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagForce     = "Replace existing files that are in the way"
	MsgFlagProfile   = "Select the modules of a profile"
	MsgFlagUpdate    = "Pull existing clones"
	MsgFlagFormat    = "Output format (auto, term, text, json, yaml, toml)"
	MsgFlagFull      = "Remove fetched sources too"
	MsgFlagResetFull = "Remove confman's state directory too"
	MsgFlagYes       = "Do not ask for confirmation"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/fetch-long.txt
	msgFetchLongRaw string
	MsgFetchLong    = strings.TrimSpace(msgFetchLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/clean-long.txt
	msgCleanLongRaw string
	MsgCleanLong    = strings.TrimSpace(msgCleanLongRaw)

	//go:embed msgs/reset-long.txt
	msgResetLongRaw string
	MsgResetLong    = strings.TrimSpace(msgResetLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/info-long.txt
	msgInfoLongRaw string
	MsgInfoLong    = strings.TrimSpace(msgInfoLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
