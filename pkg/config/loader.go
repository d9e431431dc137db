package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/types"
)

// EnvPrefix is the prefix of environment variables read into the config
const EnvPrefix = "CONFMAN_"

// Format is a config file syntax
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the parser from a file extension; unknown extensions are YAML
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

func parserFor(f Format) koanf.Parser {
	if f == FormatTOML {
		return toml.Parser()
	}
	return yaml.Parser()
}

type document struct {
	path string
	raw  rawConfig
}

type loader struct {
	active map[string]bool
	done   map[string]bool
	chain  []string
	docs   []document
}

func newLoader() *loader {
	return &loader{active: map[string]bool{}, done: map[string]bool{}}
}

// Load reads the config file at path, follows its includes and validates
// the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New(errors.ErrConfigLoad, "no config file found; run `confman init` or pass --config")
	}

	abs, err := filepath.Abs(paths.ExpandHome(path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot resolve config path %s", path)
	}

	logger := logging.GetLogger("config")
	done := logging.LogOperationStart(logger, "load config")
	defer done()

	l := newLoader()
	if err := l.loadFile(abs, true); err != nil {
		return nil, err
	}

	cfg, err := build(l.docs)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("path", abs).
		Int("modules", len(cfg.Modules)).
		Int("includes", len(cfg.Include)).
		Msg("Config loaded")
	return cfg, nil
}

// Parse decodes an in-memory document. Includes resolve against baseDir.
func Parse(data []byte, format Format, baseDir string) (*Config, error) {
	l := newLoader()
	k, err := newKoanf(true)
	if err != nil {
		return nil, err
	}
	if err := k.Load(&rawBytesProvider{bytes: data}, parserFor(format)); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse config")
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	raw, err := decode(k)
	if err != nil {
		return nil, err
	}

	origin := filepath.Join(baseDir, "<memory>")
	l.docs = append(l.docs, document{path: origin, raw: raw})
	for _, inc := range raw.Include {
		if err := l.loadFile(resolveInclude(origin, inc), false); err != nil {
			return nil, err
		}
	}
	cfg, err := build(l.docs)
	if err != nil {
		return nil, err
	}
	cfg.Path = ""
	return cfg, nil
}

func (l *loader) loadFile(path string, root bool) error {
	if l.active[path] {
		chain := append(append([]string(nil), l.chain...), path)
		return errors.Newf(errors.ErrIncludeCycle, "include cycle: %s", strings.Join(chain, " -> ")).
			WithDetail("path", path)
	}
	if l.done[path] {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config %s", path).WithDetail("path", path)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrConfigLoad, "config %s is a directory", path).WithDetail("path", path)
	}

	l.active[path] = true
	l.chain = append(l.chain, path)
	defer func() {
		delete(l.active, path)
		l.chain = l.chain[:len(l.chain)-1]
	}()

	k, err := newKoanf(root)
	if err != nil {
		return err
	}
	if err := k.Load(file.Provider(path), parserFor(FormatFor(path))); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config %s", path).WithDetail("path", path)
	}
	if root {
		if err := loadEnv(k); err != nil {
			return err
		}
	}

	raw, err := decode(k)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "invalid config %s", path).WithDetail("path", path)
	}

	l.done[path] = true
	l.docs = append(l.docs, document{path: path, raw: raw})

	for _, inc := range raw.Include {
		if err := l.loadFile(resolveInclude(path, inc), false); err != nil {
			return err
		}
	}
	return nil
}

func newKoanf(withDefaults bool) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if !withDefaults {
		return k, nil
	}
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load defaults")
	}
	return k, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"link_mode": string(types.DefaultLinkMode),
	}
}

// loadEnv lets CONFMAN_LINK_MODE override the file. Other CONFMAN_ variables
// name directories and are read by the paths package instead.
func loadEnv(k *koanf.Koanf) error {
	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s, v string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key != "link_mode" || strings.TrimSpace(v) == "" {
			return "", nil
		}
		return key, v
	}), nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}
	return nil
}

func decode(k *koanf.Koanf) (rawConfig, error) {
	var raw rawConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &raw,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &raw, unmarshalConf); err != nil {
		return rawConfig{}, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return raw, nil
}

func resolveInclude(from, include string) string {
	include = paths.ExpandHome(include)
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}
	return filepath.Clean(include)
}
