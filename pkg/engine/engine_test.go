// TEST TYPE: Integration Tests
// DEPENDENCIES: Mock Sources, real filesystem in a temp dir
// PURPOSE: Test module orchestration, collision checks and outcomes

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/confman/pkg/config"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/executor"
	"github.com/arthur-debert/confman/pkg/module"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

type MockSources struct {
	mock.Mock
}

func (m *MockSources) Fetch(ctx context.Context, src source.Source) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

func (m *MockSources) Locate(src source.Source) (string, error) {
	args := m.Called(src)
	return args.String(0), args.Error(1)
}

func (m *MockSources) Remove(src source.Source) error {
	args := m.Called(src)
	return args.Error(0)
}

type env struct {
	t       *testing.T
	dir     string
	home    string
	sources *MockSources
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	require.NoError(t, os.MkdirAll(home, 0755))
	return &env{t: t, dir: dir, home: home, sources: &MockSources{}}
}

// tree writes files under a module source directory and returns its path
func (e *env) tree(name string, files map[string]string) string {
	e.t.Helper()
	root := filepath.Join(e.dir, "src", name)
	require.NoError(e.t, os.MkdirAll(root, 0755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(e.t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

// pathModule declares a module served from a local tree
func (e *env) pathModule(name, root string, opts ...module.Option) module.Module {
	e.t.Helper()
	src := source.Path(root)
	m, err := module.New(name, src, opts...)
	require.NoError(e.t, err)
	e.sources.On("Fetch", mock.Anything, src).Return(root, nil).Maybe()
	e.sources.On("Locate", src).Return(root, nil).Maybe()
	return m
}

func (e *env) engine(cfg *config.Config, opts Options) *Engine {
	opts.Sources = e.sources
	opts.Env = types.Environment{Home: e.home, WorkDir: e.dir, OS: "linux"}
	return New(cfg, opts)
}

func (e *env) linkTarget(rel string) string {
	e.t.Helper()
	target, err := os.Readlink(filepath.Join(e.home, rel))
	require.NoError(e.t, err)
	return target
}

func TestApplyDeploysEveryModule(t *testing.T) {
	e := newEnv(t)
	vimRoot := e.tree("vim", map[string]string{"vimrc": "set nu"})
	gitRoot := e.tree("git", map[string]string{"gitconfig": "[user]"})

	cfg, err := config.New(types.LinkAlways,
		e.pathModule("vim", vimRoot, module.WithEntries(module.NewEntry("vimrc", module.KindFile))),
		e.pathModule("git", gitRoot),
	)
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Apply(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, Succeeded, report.Outcome())
	require.Len(t, report.Modules, 2)
	assert.Equal(t, "vim", report.Modules[0].Module)
	assert.Equal(t, "git", report.Modules[1].Module)
	assert.Equal(t, filepath.Join(vimRoot, "vimrc"), e.linkTarget("vimrc"))
	assert.Equal(t, filepath.Join(gitRoot, "gitconfig"), e.linkTarget("gitconfig"))

	again, err := e.engine(cfg, Options{}).Apply(context.Background(), Selection{})
	require.NoError(t, err)
	for _, mr := range again.Modules {
		assert.Equal(t, 0, mr.Deploy.Mutations(), "second apply changes nothing")
	}
}

func TestApplyCollisionTouchesNothing(t *testing.T) {
	e := newEnv(t)
	a := e.tree("a", map[string]string{"rc": "a"})
	b := e.tree("b", map[string]string{"rc": "b"})

	cfg, err := config.New(types.LinkAlways, e.pathModule("a", a), e.pathModule("b", b))
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Apply(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, Failed, report.Outcome())
	assert.True(t, errors.IsErrorCode(report.Err, errors.ErrDestinationCollision))
	for _, mr := range report.Modules {
		assert.Nil(t, mr.Deploy)
	}
	_, statErr := os.Lstat(filepath.Join(e.home, "rc"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyModuleFailureIsLocal(t *testing.T) {
	e := newEnv(t)
	good := e.tree("good", map[string]string{"goodrc": "x"})

	remote := source.Git("https://github.com/o/r.git")
	broken, err := module.New("remote", remote)
	require.NoError(t, err)
	e.sources.On("Fetch", mock.Anything, remote).Return("", errors.New(errors.ErrFetchAuth, "denied"))

	invalid, err := module.New("invalid", source.Source{})
	require.NoError(t, err)

	cfg, err := config.New(types.LinkAlways, broken, e.pathModule("good", good), invalid)
	require.NoError(t, err)
	cfg.MarkInvalid("invalid", errors.New(errors.ErrInvalidURL, "bad url"))

	report, err := e.engine(cfg, Options{Workers: 1}).Apply(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, Failed, report.Outcome())
	assert.True(t, errors.IsErrorCode(report.Modules[0].Err, errors.ErrFetchAuth))
	assert.NoError(t, report.Modules[1].Err)
	assert.True(t, errors.IsErrorCode(report.Modules[2].Err, errors.ErrInvalidURL))
	assert.Equal(t, filepath.Join(good, "goodrc"), e.linkTarget("goodrc"))
	assert.Len(t, report.Failures(), 2)
}

func TestApplyConflictIsWarning(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	require.NoError(t, os.WriteFile(filepath.Join(e.home, "vimrc"), []byte("mine"), 0644))

	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root))
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Apply(context.Background(), Selection{})
	require.NoError(t, err)
	assert.Equal(t, SucceededWithWarnings, report.Outcome())
	assert.Equal(t, 1, report.Modules[0].Deploy.Count(executor.ActionConflict))
}

func TestApplyDryRun(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root))
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{DryRun: true}).Apply(context.Background(), Selection{})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, executor.ActionLink, report.Modules[0].Deploy.Results[0].Action)

	_, statErr := os.Lstat(filepath.Join(e.home, "vimrc"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSelection(t *testing.T) {
	e := newEnv(t)
	a := e.tree("a", map[string]string{"arc": "a"})
	b := e.tree("b", map[string]string{"brc": "b"})
	cfg, err := config.New(types.LinkAlways, e.pathModule("a", a), e.pathModule("b", b))
	require.NoError(t, err)
	cfg.Profiles["work"] = []string{"b"}
	eng := e.engine(cfg, Options{})

	report, err := eng.Apply(context.Background(), Selection{Profile: "work"})
	require.NoError(t, err)
	require.Len(t, report.Modules, 1)
	assert.Equal(t, "b", report.Modules[0].Module)

	_, err = eng.Apply(context.Background(), Selection{Modules: []string{"nope"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownModule))

	_, err = eng.Apply(context.Background(), Selection{Profile: "home"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownProfile))

	_, err = eng.Apply(context.Background(), Selection{Profile: "work", Modules: []string{"a"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFetchDoesNotResolve(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root))
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Fetch(context.Background(), Selection{})
	require.NoError(t, err)
	assert.Equal(t, root, report.Modules[0].Dir)
	assert.Nil(t, report.Modules[0].Mapping)
	assert.Equal(t, Succeeded, report.Outcome())
}

func TestStatusLocatesSources(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu", "gvimrc": "set gui"})
	remote := source.Git("https://github.com/o/r.git")
	unfetched, err := module.New("remote", remote)
	require.NoError(t, err)
	e.sources.On("Locate", remote).Return("", errors.New(errors.ErrFileNotFound, "not fetched"))

	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root), unfetched)
	require.NoError(t, err)
	eng := e.engine(cfg, Options{})

	require.NoError(t, os.Symlink(filepath.Join(root, "vimrc"), filepath.Join(e.home, "vimrc")))

	report, err := eng.Status(context.Background(), Selection{})
	require.NoError(t, err)

	states := map[string]executor.State{}
	for _, st := range report.Modules[0].Statuses {
		states[st.Record.Source] = st.State
	}
	assert.Equal(t, executor.StateLinked, states["vimrc"])
	assert.Equal(t, executor.StateMissing, states["gvimrc"])
	assert.True(t, errors.IsErrorCode(report.Modules[1].Err, errors.ErrFileNotFound))
	e.sources.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestStatusInspectErrorFails(t *testing.T) {
	e := newEnv(t)
	root := e.tree("app", map[string]string{"cfg/x": "1"})
	cfg, err := config.New(types.LinkAlways, e.pathModule("app", root))
	require.NoError(t, err)

	// ~/cfg is a regular file, so ~/cfg/x cannot be inspected
	require.NoError(t, os.WriteFile(filepath.Join(e.home, "cfg"), []byte("plain"), 0644))

	report, err := e.engine(cfg, Options{}).Status(context.Background(), Selection{})
	require.NoError(t, err)
	require.Len(t, report.Modules[0].Statuses, 1)
	assert.Equal(t, executor.StateError, report.Modules[0].Statuses[0].State)
	assert.True(t, report.Modules[0].Failed())
	assert.Equal(t, Failed, report.Outcome())
}

func TestClean(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	remote := source.Git("https://github.com/o/r.git")
	unfetched, err := module.New("remote", remote)
	require.NoError(t, err)
	e.sources.On("Locate", remote).Return("", errors.New(errors.ErrFileNotFound, "not fetched"))

	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root), unfetched)
	require.NoError(t, err)

	_, err = e.engine(cfg, Options{}).Apply(context.Background(), Selection{Modules: []string{"vim"}})
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Clean(context.Background(), Selection{}, false)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, report.Outcome())
	assert.Equal(t, 1, report.Modules[0].Deploy.Count(executor.ActionRemove))
	assert.NotEmpty(t, report.Modules[1].Note)

	_, statErr := os.Lstat(filepath.Join(e.home, "vimrc"))
	assert.True(t, os.IsNotExist(statErr))
	e.sources.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestCleanFullRemovesGitCache(t *testing.T) {
	e := newEnv(t)
	remote := source.Git("https://github.com/o/r.git")
	clone := e.tree("clone", map[string]string{"zshrc": "z"})
	m, err := module.New("zsh", remote)
	require.NoError(t, err)
	e.sources.On("Locate", remote).Return(clone, nil)
	e.sources.On("Remove", remote).Return(nil).Once()

	cfg, err := config.New(types.LinkAlways, m)
	require.NoError(t, err)

	report, err := e.engine(cfg, Options{}).Clean(context.Background(), Selection{}, true)
	require.NoError(t, err)
	assert.True(t, report.Modules[0].CacheRemoved)
	e.sources.AssertExpectations(t)
}

func TestReset(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	sourcesDir := filepath.Join(e.dir, "cache", "sources")
	stateDir := filepath.Join(e.dir, "state")
	require.NoError(t, os.MkdirAll(filepath.Join(sourcesDir, "github.com", "old", "repo"), 0755))
	require.NoError(t, os.MkdirAll(stateDir, 0755))

	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root))
	require.NoError(t, err)
	opts := Options{SourcesDir: sourcesDir, StateDir: stateDir}

	_, err = e.engine(cfg, opts).Apply(context.Background(), Selection{})
	require.NoError(t, err)

	report, err := e.engine(cfg, opts).Reset(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, report.Outcome())

	_, statErr := os.Lstat(filepath.Join(e.home, "vimrc"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(sourcesDir)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(stateDir)
	assert.NoError(t, statErr, "state survives a plain reset")

	_, err = e.engine(cfg, opts).Reset(context.Background(), true)
	require.NoError(t, err)
	_, statErr = os.Stat(stateDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCancelledRun(t *testing.T) {
	e := newEnv(t)
	root := e.tree("vim", map[string]string{"vimrc": "set nu"})
	cfg, err := config.New(types.LinkAlways, e.pathModule("vim", root))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := e.engine(cfg, Options{}).Apply(ctx, Selection{})
	require.NoError(t, err)
	assert.Equal(t, Failed, report.Outcome())
	assert.True(t, errors.IsErrorCode(report.Modules[0].Err, errors.ErrCancelled))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "succeeded with warnings", SucceededWithWarnings.String())
	assert.Equal(t, "failed", Failed.String())
}
