// Package host drives binscript recipes the way a buildout run does: it
// loads the configuration, picks the parts to process, prepares the bin
// directory and calls each part's lifecycle hook in order.
package host

import (
	"time"

	"github.com/arthur-debert/binscript/pkg/buildout"
	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/filesystem"
	"github.com/arthur-debert/binscript/pkg/logging"
	"github.com/arthur-debert/binscript/pkg/recipe"
	"github.com/arthur-debert/binscript/pkg/render"
	"github.com/arthur-debert/binscript/pkg/types"
)

// Hook names a recipe lifecycle point.
type Hook string

const (
	HookInstall Hook = "install"
	HookUpdate  Hook = "update"
)

// Options configures a host run.
type Options struct {
	// ConfigPath is the buildout configuration file.
	ConfigPath string
	// Overrides are "section:option=value" assignments applied before the
	// host defaults.
	Overrides []string
	// Parts restricts the run to these parts. Empty means buildout:parts.
	Parts []string
	// DryRun renders without writing.
	DryRun bool
	// FS is used for templates and output. Defaults to the OS filesystem.
	FS types.FS
}

// PartResult is the outcome of one part.
type PartResult struct {
	Part    string
	Paths   []string
	Skipped bool
	Reason  string
}

// Result is the outcome of a run.
type Result struct {
	Hook   Hook
	DryRun bool
	Parts  []PartResult
}

// LoadConfig loads the configuration with the run's overrides applied.
func LoadConfig(opts Options) (*buildout.Config, error) {
	return buildout.Load(opts.ConfigPath, opts.Overrides...)
}

// Run calls hook on every selected part and stops at the first failure.
// Parts completed before the failure are included in the result.
func Run(hook Hook, opts Options) (*Result, error) {
	logger := logging.GetLogger("host")
	defer logging.LogDuration(time.Now(), string(hook))

	if hook != HookInstall && hook != HookUpdate {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown hook %q", hook)
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Hook: hook, DryRun: opts.DryRun}
	parts := selectParts(cfg, opts.Parts)

	if runnable(parts) && !opts.DryRun {
		settings, err := cfg.Settings()
		if err != nil {
			return result, err
		}
		if err := fsys.MkdirAll(settings.BinDirectory, 0755); err != nil {
			return result, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", settings.BinDirectory)
		}
	}

	for _, part := range parts {
		if part.Skipped {
			result.Parts = append(result.Parts, part)
			continue
		}
		name := part.Part
		script, err := newScript(cfg, name, fsys)
		if err != nil {
			return result, err
		}

		var paths []string
		switch {
		case opts.DryRun:
			var target string
			target, _, err = script.Render()
			paths = []string{target}
		case hook == HookUpdate:
			paths, err = script.Update()
		default:
			paths, err = script.Install()
		}
		if err != nil {
			logger.Error().Err(err).Str("part", name).Str("hook", string(hook)).Msg("part failed")
			return result, err
		}

		result.Parts = append(result.Parts, PartResult{Part: name, Paths: paths})
	}

	return result, nil
}

// Render returns the target path and rendered text for one part.
func Render(opts Options, part string) (string, string, error) {
	script, err := scriptFor(opts, part)
	if err != nil {
		return "", "", err
	}
	return script.Render()
}

// Context returns the substitution context one part renders with.
func Context(opts Options, part string) (render.Context, error) {
	script, err := scriptFor(opts, part)
	if err != nil {
		return nil, err
	}
	return script.Context(), nil
}

func scriptFor(opts Options, part string) (*recipe.Script, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newScript(cfg, part, fsys)
}

func newScript(cfg *buildout.Config, name string, fsys types.FS) (*recipe.Script, error) {
	options, err := cfg.Part(name)
	if err != nil {
		return nil, err
	}
	return recipe.New(cfg, name, options, recipe.WithFS(fsys))
}

// selectParts returns the parts to process in buildout:parts order.
// Explicitly named parts always run; parts taken from buildout:parts run only
// when their recipe is binscript or unset, and are reported as skipped
// otherwise.
func selectParts(cfg *buildout.Config, requested []string) []PartResult {
	if len(requested) > 0 {
		parts := make([]PartResult, 0, len(requested))
		for _, name := range requested {
			parts = append(parts, PartResult{Part: name})
		}
		return parts
	}

	var parts []PartResult
	for _, name := range cfg.Parts() {
		options, err := cfg.Part(name)
		if err != nil {
			// missing sections surface as errors when the part is run
			parts = append(parts, PartResult{Part: name})
			continue
		}
		if r := options[buildout.KeyRecipe]; r != "" && r != recipe.RecipeName {
			parts = append(parts, PartResult{Part: name, Skipped: true, Reason: "recipe " + r})
			continue
		}
		parts = append(parts, PartResult{Part: name})
	}
	return parts
}

func runnable(parts []PartResult) bool {
	for _, p := range parts {
		if !p.Skipped {
			return true
		}
	}
	return false
}
