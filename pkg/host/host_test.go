package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type project struct {
	dir    string
	config string
}

func newProject(t *testing.T, cfg string, templates map[string]string) project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0755))
	for name, text := range templates {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", name), []byte(text), 0644))
	}
	config := filepath.Join(dir, "buildout.cfg")
	require.NoError(t, os.WriteFile(config, []byte(cfg), 0644))
	return project{dir: dir, config: config}
}

const projectConfig = `[buildout]
parts = hello eggs env

[hello]
recipe = binscript
template = hello.sh
who = world

[eggs]
recipe = zc.recipe.egg
eggs = app

[env]
template = env.sh
`

func TestRunInstall(t *testing.T) {
	p := newProject(t, projectConfig, map[string]string{
		"hello.sh": "#!/bin/sh\necho hello %(who)s from %(part-name)s\n",
	})

	result, err := Run(HookInstall, Options{ConfigPath: p.config})
	require.NoError(t, err)

	assert.Equal(t, HookInstall, result.Hook)
	require.Len(t, result.Parts, 3)

	hello := filepath.Join(p.dir, "bin", "hello")
	assert.Equal(t, PartResult{Part: "hello", Paths: []string{hello}}, result.Parts[0])
	assert.Equal(t, PartResult{Part: "eggs", Skipped: true, Reason: "recipe zc.recipe.egg"}, result.Parts[1])
	assert.Equal(t, []string{filepath.Join(p.dir, "bin", "env")}, result.Parts[2].Paths, "bundled env.sh")

	data, err := os.ReadFile(hello)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hello world from hello\n", string(data))

	info, err := os.Stat(hello)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0111)
}

func TestRunExplicitPartsAndOverrides(t *testing.T) {
	p := newProject(t, projectConfig, map[string]string{
		"hello.sh": "hello %(who)s\n",
	})

	result, err := Run(HookUpdate, Options{
		ConfigPath: p.config,
		Parts:      []string{"hello"},
		Overrides:  []string{"hello:who=override", "hello:target=greet"},
	})
	require.NoError(t, err)
	require.Len(t, result.Parts, 1)

	data, err := os.ReadFile(filepath.Join(p.dir, "bin", "greet"))
	require.NoError(t, err)
	assert.Equal(t, "hello override\n", string(data))
}

func TestRunPathOverridesAreAnchored(t *testing.T) {
	t.Run("directory override moves templates and output", func(t *testing.T) {
		p := newProject(t, projectConfig, map[string]string{"hello.sh": "old %(who)s\n"})
		other := newProject(t, projectConfig, map[string]string{"hello.sh": "new %(who)s\n"})

		result, err := Run(HookInstall, Options{
			ConfigPath: p.config,
			Parts:      []string{"hello"},
			Overrides:  []string{"buildout:directory=" + other.dir},
		})
		require.NoError(t, err)

		written := filepath.Join(other.dir, "bin", "hello")
		assert.Equal(t, []string{written}, result.Parts[0].Paths)
		data, err := os.ReadFile(written)
		require.NoError(t, err)
		assert.Equal(t, "new world\n", string(data))

		_, err = os.Stat(filepath.Join(p.dir, "bin"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("relative bin-directory is anchored at directory", func(t *testing.T) {
		p := newProject(t, projectConfig, map[string]string{"hello.sh": "x"})

		result, err := Run(HookInstall, Options{
			ConfigPath: p.config,
			Parts:      []string{"hello"},
			Overrides:  []string{"buildout:bin-directory=scripts"},
		})
		require.NoError(t, err)

		written := filepath.Join(p.dir, "scripts", "hello")
		assert.Equal(t, []string{written}, result.Parts[0].Paths)
		_, err = os.Stat(written)
		assert.NoError(t, err)
	})

	t.Run("relative directory is anchored at the config file", func(t *testing.T) {
		p := newProject(t, projectConfig, nil)
		require.NoError(t, os.MkdirAll(filepath.Join(p.dir, "sub", "templates"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(p.dir, "sub", "templates", "hello.sh"), []byte("sub"), 0644))

		target, text, err := Render(Options{
			ConfigPath: p.config,
			Overrides:  []string{"buildout:directory=sub"},
		}, "hello")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(p.dir, "sub", "bin", "hello"), target)
		assert.Equal(t, "sub", text)
	})
}

func TestRunDryRun(t *testing.T) {
	p := newProject(t, projectConfig, map[string]string{"hello.sh": "x"})

	result, err := Run(HookInstall, Options{ConfigPath: p.config, Parts: []string{"hello"}, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, []string{filepath.Join(p.dir, "bin", "hello")}, result.Parts[0].Paths)

	_, err = os.Stat(filepath.Join(p.dir, "bin"))
	assert.True(t, os.IsNotExist(err), "dry run creates nothing")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	p := newProject(t, `[buildout]
parts = broken hello

[broken]
target = x

[hello]
template = hello.sh
`, map[string]string{"hello.sh": "x"})

	result, err := Run(HookInstall, Options{ConfigPath: p.config})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
	assert.Empty(t, result.Parts)

	_, err = os.Stat(filepath.Join(p.dir, "bin", "hello"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunErrors(t *testing.T) {
	p := newProject(t, projectConfig, nil)

	_, err := Run(Hook("uninstall"), Options{ConfigPath: p.config})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = Run(HookInstall, Options{ConfigPath: filepath.Join(p.dir, "nope.cfg")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))

	_, err = Run(HookInstall, Options{ConfigPath: p.config, Parts: []string{"ghost"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartNotFound))

	_, err = Run(HookInstall, Options{ConfigPath: p.config, Overrides: []string{"bad"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenderAndContext(t *testing.T) {
	p := newProject(t, projectConfig, map[string]string{"hello.sh": "hi %(who)s"})
	opts := Options{ConfigPath: p.config}

	target, text, err := Render(opts, "hello")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.dir, "bin", "hello"), target)
	assert.Equal(t, "hi world", text)

	ctx, err := Context(opts, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", ctx["part-name"])
	assert.Equal(t, "world", ctx["who"])
	assert.Equal(t, p.dir, ctx["directory"])
	assert.Equal(t, "hello eggs env", ctx["parts"])

	_, err = Context(opts, "ghost")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartNotFound))
}
