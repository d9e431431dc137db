package matcher

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/filesystem"
	"github.com/arthur-debert/confman/pkg/module"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/src"

var env = types.Environment{Home: "/home/u", WorkDir: "/work", OS: "linux"}

func tree(t *testing.T, files ...string) types.FS {
	t.Helper()
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(root, 0755))
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, fs.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, fs.WriteFile(full, []byte(f), 0644))
	}
	return fs
}

func mod(t *testing.T, opts ...module.Option) module.Module {
	t.Helper()
	m, err := module.New("dots", source.MustParse("foo/bar"), opts...)
	require.NoError(t, err)
	return m
}

func destinations(m *Mapping) map[string]string {
	out := map[string]string{}
	for _, r := range m.Records {
		out[r.Source] = r.Destination
	}
	return out
}

func glob(value string) module.Entry { return module.NewEntry(value, module.KindGlob) }

func TestResolveDefaultEntryWithExcludes(t *testing.T) {
	fs := tree(t, "a.txt", "README.md", ".git/config")
	m := mod(t, module.WithBase("~"), module.WithExclude(".git/", "**/*.md"))

	mapping, err := New(fs).Resolve(root, m, env)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a.txt": "/home/u/a.txt"}, destinations(mapping))
	require.Len(t, mapping.Records, 1)
	rec := mapping.Records[0]
	assert.Equal(t, "dots", rec.Module)
	assert.Equal(t, filepath.Join(root, "a.txt"), rec.SourcePath)
	assert.True(t, rec.Link)
	assert.Equal(t, "/home/u", mapping.Base)
}

func TestResolveBaseDefaultsToHome(t *testing.T) {
	fs := tree(t, "x")
	mapping, err := New(fs).Resolve(root, mod(t), env)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/x", mapping.Records[0].Destination)
}

func TestResolveBase(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"~", "/home/u"},
		{"~/.config", "/home/u/.config"},
		{"/etc/app", "/etc/app"},
		{"out", "/work/out"},
		{"out/../elsewhere", "/work/elsewhere"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := ResolveBase(mod(t, module.WithBase(tt.base)), env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveBase(mod(t), types.Environment{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidDestination))
}

func TestResolveFileEntry(t *testing.T) {
	fs := tree(t, "vim/vimrc", "vim/gvimrc")
	e := module.NewEntry("vim/vimrc", module.KindFile)

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"vim/vimrc": "/home/u/vim/vimrc"}, destinations(mapping))
}

func TestResolveFileEntryMissing(t *testing.T) {
	fs := tree(t, "a")
	e := module.NewEntry("nope", module.KindFile)

	_, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	assert.Equal(t, 0, errors.GetErrorDetails(err)["entry"])
}

func TestResolveFileEntryIsDirectory(t *testing.T) {
	fs := tree(t, "vim/vimrc")
	e := module.NewEntry("vim", module.KindFile)

	_, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidEntry))
}

func TestResolveDirectoryEntry(t *testing.T) {
	fs := tree(t, "fish/config.fish", "fish/functions/f.fish", "fishy", "other/x")
	e := module.NewEntry("fish", module.KindDirectory)
	e.MapDir = ".config"
	e.Flatten = true

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"fish/config.fish":      "/home/u/.config/fish/config.fish",
		"fish/functions/f.fish": "/home/u/.config/fish/functions/f.fish",
	}, destinations(mapping), "flatten is ignored for directories")

	missing := module.NewEntry("nope", module.KindDirectory)
	_, err = New(fs).Resolve(root, mod(t, module.WithEntries(missing)), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestResolveGlobSemantics(t *testing.T) {
	fs := tree(t, "a.conf", "b.conf", "sub/c.conf", "sub/deep/d.conf", "e1.txt", "e22.txt", "x.txt")

	tests := []struct {
		pattern string
		want    []string
	}{
		{"*.conf", []string{"a.conf", "b.conf"}},
		{"**/*.conf", []string{"a.conf", "b.conf", "sub/c.conf", "sub/deep/d.conf"}},
		{"sub/*", []string{"sub/c.conf"}},
		{"e?.txt", []string{"e1.txt"}},
		{"[ax].*", []string{"a.conf", "x.txt"}},
		{"./sub/**", []string{"sub/c.conf", "sub/deep/d.conf"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(glob(tt.pattern))), env)
			require.NoError(t, err)
			var got []string
			for _, r := range mapping.Records {
				got = append(got, r.Source)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveInvalidGlob(t *testing.T) {
	fs := tree(t, "a")
	_, err := New(fs).Resolve(root, mod(t, module.WithEntries(glob("[a-"))), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidGlob))

	_, err = New(fs).Resolve(root, mod(t, module.WithExclude("[")), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidGlob))
}

func TestResolveFlatten(t *testing.T) {
	fs := tree(t, "sub/dir/file.txt", "sub/other/file2.txt")
	e := glob("**/*")
	e.Flatten = true

	mapping, err := New(fs).Resolve(root, mod(t, module.WithBase("/base"), module.WithEntries(e)), env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"sub/dir/file.txt":    "/base/file.txt",
		"sub/other/file2.txt": "/base/file2.txt",
	}, destinations(mapping))
}

func TestResolveFlattenCollisionInOneEntry(t *testing.T) {
	fs := tree(t, "a/x", "b/x")
	e := glob("**/*")
	e.Flatten = true

	_, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateDestination))
}

func TestResolveRenameAndMapDir(t *testing.T) {
	fs := tree(t, "vimrc", "gitconfig")
	e := glob("*")
	e.MapDir = "cfg"
	e.Rename = map[string]string{"vimrc": ".vimrc"}

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"vimrc":     "/home/u/cfg/.vimrc",
		"gitconfig": "/home/u/cfg/gitconfig",
	}, destinations(mapping))
}

func TestResolveRenameBeatsFlatten(t *testing.T) {
	fs := tree(t, "a/b/c")
	e := glob("**/*")
	e.Flatten = true
	e.Rename = map[string]string{"a/b/c": "x/y"}

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/x/y", mapping.Records[0].Destination)
}

func TestResolveDestinationEscape(t *testing.T) {
	fs := tree(t, "a")
	e := glob("*")
	e.Rename = map[string]string{"a": "../../etc/passwd"}

	_, err := New(fs).Resolve(root, mod(t, module.WithEntries(e)), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidDestination))
}

func TestResolveLaterEntryOverrides(t *testing.T) {
	fs := tree(t, "notes.md", "vimrc")
	docs := glob("*.md")
	docs.Link = false

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(glob("**/*"), docs)), env)
	require.NoError(t, err)

	rec, ok := mapping.Lookup("/home/u/notes.md")
	require.True(t, ok)
	assert.False(t, rec.Link, "later entry's link flag wins")
	assert.Equal(t, 1, rec.Entry)
	assert.Len(t, mapping.Records, 2)
	assert.Len(t, mapping.Linked(), 1)
}

func TestResolveLaterEntryMovesDestination(t *testing.T) {
	fs := tree(t, "vim/vimrc", "zshrc")
	narrow := module.NewEntry("vim/vimrc", module.KindFile)
	narrow.Rename = map[string]string{"vim/vimrc": ".vimrc"}

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(glob("**/*"), narrow)), env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"vim/vimrc": "/home/u/.vimrc",
		"zshrc":     "/home/u/zshrc",
	}, destinations(mapping))
	assert.Equal(t, "zshrc", mapping.Records[0].Source, "production order is kept")
}

func TestResolveDestinationOverrideAcrossEntries(t *testing.T) {
	fs := tree(t, "a/x", "b/x")
	first := glob("a/*")
	first.Flatten = true
	second := glob("b/*")
	second.Flatten = true

	mapping, err := New(fs).Resolve(root, mod(t, module.WithEntries(first, second)), env)
	require.NoError(t, err)
	require.Len(t, mapping.Records, 1)
	assert.Equal(t, "b/x", mapping.Records[0].Source, "last entry to produce a destination wins")

	second.Link = false
	_, err = New(fs).Resolve(root, mod(t, module.WithEntries(first, second)), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateDestination), "conflicting link flags are ambiguous")
}

func TestResolveOSFilter(t *testing.T) {
	fs := tree(t, "win.ini", "unix.conf")
	win := glob("*.ini")
	win.OS = []string{"windows"}
	unix := glob("*.conf")
	unix.OS = []string{"linux", "darwin"}

	m := mod(t, module.WithEntries(win, unix))

	mapping, err := New(fs).Resolve(root, m, env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"unix.conf": "/home/u/unix.conf"}, destinations(mapping))

	winEnv := types.Environment{Home: `/users/u`, WorkDir: "/", OS: "windows"}
	mapping, err = New(fs).Resolve(root, m, winEnv)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"win.ini": "/users/u/win.ini"}, destinations(mapping))
}

func TestResolveExcludeAppliesToEveryEntry(t *testing.T) {
	fs := tree(t, "a.md", "docs/b.md", "c.txt", "node_modules/x/y.js")
	file := module.NewEntry("a.md", module.KindFile)
	m := mod(t,
		module.WithEntries(glob("**/*"), file),
		module.WithExclude("**/*.md", "node_modules"),
	)

	mapping, err := New(fs).Resolve(root, m, env)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c.txt": "/home/u/c.txt"}, destinations(mapping))
}

func TestResolveExcludeBeforeRename(t *testing.T) {
	fs := tree(t, "notes.md", "vimrc")
	e := glob("*")
	e.Rename = map[string]string{"notes.md": "notes.txt"}

	t.Run("source path is excluded", func(t *testing.T) {
		m := mod(t, module.WithEntries(e), module.WithExclude("**/*.md"))
		mapping, err := New(fs).Resolve(root, m, env)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"vimrc": "/home/u/vimrc"}, destinations(mapping))
	})

	t.Run("renamed path is not matched", func(t *testing.T) {
		m := mod(t, module.WithEntries(e), module.WithExclude("*.txt"))
		mapping, err := New(fs).Resolve(root, m, env)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"notes.md": "/home/u/notes.txt",
			"vimrc":    "/home/u/vimrc",
		}, destinations(mapping))
	})
}

func TestResolveMissingRoot(t *testing.T) {
	fs := filesystem.NewMemory()
	_, err := New(fs).Resolve("/nope", mod(t), env)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestResolveRealFilesystem(t *testing.T) {
	dir := t.TempDir()
	fs := filesystem.NewOS()
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "src", "sub"), 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, "src", "sub", "f"), []byte("x"), 0644))

	home := filepath.Join(dir, "home")
	mapping, err := New(fs).Resolve(filepath.Join(dir, "src"), mod(t), types.Environment{Home: home, WorkDir: dir, OS: "linux"})
	require.NoError(t, err)
	require.Len(t, mapping.Records, 1)
	assert.Equal(t, "sub/f", mapping.Records[0].Source)
	assert.Equal(t, filepath.Join(home, "sub", "f"), mapping.Records[0].Destination)
}
