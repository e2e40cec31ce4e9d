package buildout

import (
	"testing"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionReturnsCopy(t *testing.T) {
	cfg := New(map[string]types.Section{"buildout": {"directory": "/a"}})

	s, ok := cfg.Section("buildout")
	require.True(t, ok)
	s["directory"] = "/mutated"

	again, _ := cfg.Section("buildout")
	assert.Equal(t, "/a", again["directory"])

	_, ok = cfg.Section("nope")
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	cfg := New(nil)
	cfg.Set("buildout", "directory", "/srv")
	cfg.Set("buildout", "directory", "/srv2")
	cfg.Set("part", "template", "x.sh")

	b, _ := cfg.Section("buildout")
	assert.Equal(t, "/srv2", b["directory"])
	assert.Equal(t, []string{"buildout", "part"}, cfg.Sections())
}

func TestPart(t *testing.T) {
	cfg := New(map[string]types.Section{
		"buildout": {"parts": "app"},
		"app":      {"template": "run.sh"},
	})

	app, err := cfg.Part("app")
	require.NoError(t, err)
	assert.Equal(t, "run.sh", app["template"])

	_, err = cfg.Part("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartNotFound))

	_, err = cfg.Part("buildout")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartNotFound))
}

func TestApplyOverrides(t *testing.T) {
	cfg := New(map[string]types.Section{"app": {"template": "a.sh"}})

	err := cfg.ApplyOverrides([]string{"app:template=b.sh", "buildout:bin-directory = /out", "x:y=a=b"})
	require.NoError(t, err)

	app, _ := cfg.Section("app")
	assert.Equal(t, "b.sh", app["template"])
	b, _ := cfg.Section("buildout")
	assert.Equal(t, "/out", b["bin-directory"])
	x, _ := cfg.Section("x")
	assert.Equal(t, "a=b", x["y"])

	for _, bad := range []string{"novalue", "nosection=1", ":key=1", "section:=1"} {
		err := cfg.ApplyOverrides([]string{bad})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), bad)
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name    string
		section types.Section
		wantDir string
		wantBin string
	}{
		{"empty", types.Section{}, "/base", "/base/bin"},
		{"relative directory", types.Section{"directory": "proj"}, "/base/proj", "/base/proj/bin"},
		{"absolute bin", types.Section{"bin-directory": "/usr/local/bin"}, "/base", "/usr/local/bin"},
		{"relative bin", types.Section{"directory": "/srv", "bin-directory": "scripts/"}, "/srv", "/srv/scripts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New(map[string]types.Section{"buildout": tt.section})
			cfg.applyDefaults("/base")

			b, _ := cfg.Section("buildout")
			assert.Equal(t, tt.wantDir, b["directory"])
			assert.Equal(t, tt.wantBin, b["bin-directory"])
		})
	}
}

func TestSettings(t *testing.T) {
	cfg := New(map[string]types.Section{"buildout": {
		"directory":     "/srv",
		"bin-directory": "/srv/bin",
		"parts":         "  env\n  runner  ",
		"unrelated":     "ignored",
	}})

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "/srv", s.Directory)
	assert.Equal(t, "/srv/bin", s.BinDirectory)
	assert.Equal(t, []string{"env", "runner"}, s.Parts)

	_, err = New(nil).Settings()
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}
