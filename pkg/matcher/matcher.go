package matcher

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/module"
	"github.com/arthur-debert/confman/pkg/types"
)

// Matcher resolves modules against source trees on a filesystem
type Matcher struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a matcher reading source trees from fs
func New(fs types.FS) *Matcher {
	return &Matcher{
		fs:     fs,
		logger: logging.GetLogger("matcher"),
	}
}

type excluder struct {
	patterns []string
}

func newExcluder(patterns []string) (*excluder, error) {
	ex := &excluder{}
	for _, p := range patterns {
		slashed := strings.TrimPrefix(filepath.ToSlash(p), "./")
		if !doublestar.ValidatePattern(strings.TrimSuffix(slashed, "/")) {
			return nil, errors.Newf(errors.ErrInvalidGlob, "invalid exclude pattern %q", p).
				WithDetail("pattern", p)
		}
		ex.patterns = append(ex.patterns, slashed)
	}
	return ex, nil
}

// excluded reports whether rel or any of its parent directories matches.
// A trailing slash restricts a pattern to directories.
func (ex *excluder) excluded(rel string) bool {
	for _, p := range ex.patterns {
		dirOnly := strings.HasSuffix(p, "/")
		p = strings.TrimSuffix(p, "/")

		if !dirOnly && matchGlob(p, rel) {
			return true
		}
		for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
			if matchGlob(p, dir) {
				return true
			}
		}
	}
	return false
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// Resolve computes the mapping of m against the tree rooted at root
func (mt *Matcher) Resolve(root string, m module.Module, env types.Environment) (*Mapping, error) {
	logger := mt.logger.With().Str("module", m.Name()).Logger()

	base, err := ResolveBase(m, env)
	if err != nil {
		return nil, err
	}

	info, err := mt.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrFileNotFound, "module %q source %s is not a directory", m.Name(), root).
			WithDetail("module", m.Name()).
			WithDetail("path", root)
	}

	ex, err := newExcluder(m.Exclude())
	if err != nil {
		return nil, err
	}

	files, err := mt.listFiles(root)
	if err != nil {
		return nil, err
	}

	res := &resolution{
		mapping:  &Mapping{Module: m.Name(), Root: root, Base: base},
		bySource: map[string]int{},
		byDest:   map[string]int{},
	}

	for i, entry := range m.Entries() {
		if !entry.AppliesTo(env.OS) {
			logger.Debug().Int("entry", i).Strs("os", entry.OS).Str("current", env.OS).Msg("Skipping entry for other platform")
			continue
		}

		matched, err := mt.expand(root, files, entry)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "module %q entry #%d", m.Name(), i+1).
				WithDetail("module", m.Name()).
				WithDetail("entry", i)
		}

		kept := 0
		for _, rel := range matched {
			if ex.excluded(rel) {
				logger.Trace().Str("file", rel).Msg("Excluded")
				continue
			}

			dest, err := destination(base, rel, entry)
			if err != nil {
				return nil, err.WithDetail("module", m.Name()).WithDetail("entry", i)
			}

			rec := Record{
				Module:      m.Name(),
				Source:      rel,
				SourcePath:  filepath.Join(root, filepath.FromSlash(rel)),
				Destination: dest,
				Link:        entry.Link,
				Entry:       i,
			}
			if err := res.add(rec); err != nil {
				return nil, err
			}
			kept++
		}

		logger.Debug().
			Int("entry", i).
			Str("kind", string(entry.Kind)).
			Str("value", entry.Value).
			Int("matched", len(matched)).
			Int("kept", kept).
			Msg("Entry resolved")
	}

	res.compact()
	logger.Debug().Int("records", len(res.mapping.Records)).Str("base", base).Msg("Module resolved")
	return res.mapping, nil
}

// ResolveBase returns the absolute destination root of m. "~" maps to
// env.Home and relative bases resolve against env.WorkDir.
func ResolveBase(m module.Module, env types.Environment) (string, error) {
	base, ok := m.Base()
	if !ok {
		if env.Home == "" {
			return "", errors.New(errors.ErrInvalidDestination, "no home directory to deploy into")
		}
		return filepath.Clean(env.Home), nil
	}

	switch {
	case base == "~":
		base = env.Home
	case strings.HasPrefix(base, "~/") || strings.HasPrefix(base, `~\`):
		base = filepath.Join(env.Home, base[2:])
	case !filepath.IsAbs(base):
		base = filepath.Join(env.WorkDir, base)
	}
	if !filepath.IsAbs(base) {
		return "", errors.Newf(errors.ErrInvalidDestination, "module %q base %q does not resolve to an absolute path", m.Name(), base).
			WithDetail("module", m.Name())
	}
	return filepath.Clean(base), nil
}

// listFiles walks root and returns every non-directory entry as a sorted,
// slash-separated relative path. Symlinked directories are not followed.
func (mt *Matcher) listFiles(root string) ([]string, error) {
	var files []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := mt.fs.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", dir).WithDetail("path", dir)
		}
		for _, e := range entries {
			childRel := path.Join(rel, e.Name())
			if e.IsDir() {
				if err := walk(filepath.Join(dir, e.Name()), childRel); err != nil {
					return err
				}
				continue
			}
			files = append(files, childRel)
		}
		return nil
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	return files, nil
}

func (mt *Matcher) expand(root string, files []string, entry module.Entry) ([]string, error) {
	switch entry.Kind {
	case module.KindFile:
		rel := module.CleanRelPath(entry.Value)
		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := mt.fs.Stat(full)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Newf(errors.ErrFileNotFound, "file %q does not exist in the module source", entry.Value).
					WithDetail("path", full)
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", full)
		}
		if info.IsDir() {
			return nil, errors.Newf(errors.ErrInvalidEntry, "file entry %q is a directory", entry.Value).
				WithDetail("path", full)
		}
		return []string{rel}, nil

	case module.KindDirectory:
		dir := module.CleanRelPath(entry.Value)
		if dir != "" {
			full := filepath.Join(root, filepath.FromSlash(dir))
			info, err := mt.fs.Stat(full)
			if err != nil || !info.IsDir() {
				return nil, errors.Newf(errors.ErrFileNotFound, "directory %q does not exist in the module source", entry.Value).
					WithDetail("path", full)
			}
		}
		var out []string
		for _, f := range files {
			if dir == "" || strings.HasPrefix(f, dir+"/") {
				out = append(out, f)
			}
		}
		return out, nil

	case module.KindGlob:
		pattern := strings.TrimPrefix(filepath.ToSlash(entry.Value), "./")
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrInvalidGlob, "invalid glob pattern %q", entry.Value).
				WithDetail("pattern", entry.Value)
		}
		var out []string
		for _, f := range files {
			if matchGlob(pattern, f) {
				out = append(out, f)
			}
		}
		return out, nil

	default:
		return nil, errors.Newf(errors.ErrInvalidEntry, "unknown entry type %q", entry.Kind)
	}
}

// destination applies rename, flatten and map_dir to rel under base
func destination(base, rel string, entry module.Entry) (string, *errors.Error) {
	target := rel
	if renamed, ok := entry.RenameFor(rel); ok {
		target = renamed
	} else if entry.Flattens() {
		target = path.Base(rel)
	}

	dest := filepath.Join(base, filepath.FromSlash(entry.MapDir), filepath.FromSlash(target))
	inside, err := filepath.Rel(base, dest)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidDestination, "%s maps outside of base %s", rel, base).
			WithDetail("source", rel).
			WithDetail("destination", dest)
	}
	return dest, nil
}
