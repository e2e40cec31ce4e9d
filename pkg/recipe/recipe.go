package recipe

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/filesystem"
	"github.com/arthur-debert/binscript/pkg/logging"
	"github.com/arthur-debert/binscript/pkg/render"
	"github.com/arthur-debert/binscript/pkg/templates"
	"github.com/arthur-debert/binscript/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// RecipeName is the value of a part's "recipe" option that selects binscript.
	RecipeName = "binscript"

	OptionTemplate    = "template"
	OptionTarget      = "target"
	OptionTemplateDir = "template_dir"

	BuildoutSection = "buildout"
	KeyDirectory    = "directory"
	KeyBinDirectory = "bin-directory"
	KeyPartName     = "part-name"

	// ExecuteBits are added to the target's mode after every write.
	ExecuteBits fs.FileMode = 0o111

	defaultTemplateDir = "templates"
	createMode         = fs.FileMode(0o666)
)

// ConfigProvider exposes the host's resolved configuration by section.
type ConfigProvider interface {
	Section(name string) (types.Section, bool)
}

// Recipe is the lifecycle surface the host drives. Both hooks return the
// paths the part owns so the host can remove them later.
type Recipe interface {
	Install() ([]string, error)
	Update() ([]string, error)
}

// Script renders one part's template into an executable file.
type Script struct {
	cfg     ConfigProvider
	name    string
	options types.Section

	templateName string
	targetName   string

	fs      types.FS
	bundled fs.FS
	logger  zerolog.Logger
}

var _ Recipe = (*Script)(nil)

// Option customizes a Script.
type Option func(*Script)

// WithFS sets the filesystem used for directory templates and output.
func WithFS(fsys types.FS) Option {
	return func(s *Script) { s.fs = fsys }
}

// WithBundled replaces the bundled template resources.
func WithBundled(resources fs.FS) Option {
	return func(s *Script) { s.bundled = resources }
}

// WithLogger sets the logger validation failures and progress go to.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Script) { s.logger = logger }
}

// New validates a part's options and returns its recipe. It fails with
// errors.ErrConfigInvalid when no template is named or the named template
// cannot be found.
func New(cfg ConfigProvider, name string, options types.Section, opts ...Option) (*Script, error) {
	if options == nil {
		options = types.Section{}
	}
	s := &Script{
		cfg:     cfg,
		name:    name,
		options: options,
		fs:      filesystem.NewOS(),
		bundled: templates.Bundled(),
		logger:  logging.PartLogger(name),
	}
	for _, opt := range opts {
		opt(s)
	}

	templateName, ok := options.Get(OptionTemplate)
	if !ok || templateName == "" {
		s.logger.Error().Msg("Missing template parameter")
		return nil, errors.New(errors.ErrConfigInvalid, "missing template parameter: a template must be specified").
			WithDetail("part", name)
	}
	s.templateName = templateName

	if target, ok := options.Get(OptionTarget); ok {
		s.targetName = target
	} else {
		s.targetName = DefaultTarget(templateName)
	}

	if _, err := s.ResolveTemplate(templateName); err != nil {
		if !templates.IsNotFound(err) {
			if errors.IsErrorCode(err, errors.ErrConfigInvalid) {
				s.logger.Error().Err(err).Msg("Cannot resolve template")
			}
			return nil, err
		}
		s.logger.Error().Str("template", templateName).Msgf("Template %s does not exist.", templateName)
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "the specified template, %s, does not exist", templateName).
			WithDetails(s.details())
	}

	s.logger.Debug().
		Str("template", s.templateName).
		Str("target", s.targetName).
		Msg("recipe configured")

	return s, nil
}

// DefaultTarget derives an output name from a template name by dropping the
// final dot-delimited extension.
func DefaultTarget(templateName string) string {
	if i := strings.LastIndex(templateName, "."); i >= 0 {
		return templateName[:i]
	}
	return templateName
}

// Name returns the part name.
func (s *Script) Name() string { return s.name }

// TemplateName returns the configured template identifier.
func (s *Script) TemplateName() string { return s.templateName }

// TargetName returns the output file name relative to the bin directory.
func (s *Script) TargetName() string { return s.targetName }

// store is the resolution chain: bundled resources first, then the template
// directory. The directory is looked up per call so the buildout section is
// only needed when a template is not bundled.
func (s *Script) store() templates.Store {
	return templates.Chain{
		templates.NewBundledStore(s.bundled),
		templates.StoreFunc(func(name string) (string, error) {
			dir, err := s.TemplateDir()
			if err != nil {
				return "", err
			}
			return templates.NewDirStore(s.fs, dir).Resolve(name)
		}),
	}
}

// TemplateDir returns the directory searched for templates that are not
// bundled: the template_dir option, or <buildout:directory>/templates.
func (s *Script) TemplateDir() (string, error) {
	if dir, ok := s.options.Get(OptionTemplateDir); ok {
		return dir, nil
	}
	root, err := s.buildoutValue(KeyDirectory)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, defaultTemplateDir), nil
}

// ResolveTemplate returns the text of the named template. The source is
// read on every call.
func (s *Script) ResolveTemplate(name string) (string, error) {
	return s.store().Resolve(name)
}

// Context builds the substitution context: the buildout section, overlaid
// by the part options, overlaid by part-name. It is rebuilt on every call.
func (s *Script) Context() render.Context {
	global, _ := s.cfg.Section(BuildoutSection)
	return render.Merge(global, s.options, map[string]string{KeyPartName: s.name})
}

// TargetPath returns the absolute path the rendered file is written to.
func (s *Script) TargetPath() (string, error) {
	binDir, err := s.buildoutValue(KeyBinDirectory)
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(binDir, s.targetName))
}

func (s *Script) details() map[string]interface{} {
	return map[string]interface{}{"part": s.name, "template": s.templateName}
}

// Render resolves the template afresh and substitutes the current context.
// It returns the target path and the rendered text without writing anything.
func (s *Script) Render() (string, string, error) {
	text, err := s.ResolveTemplate(s.templateName)
	if err != nil {
		return "", "", err
	}

	rendered, err := render.Render(text, s.Context())
	if err != nil {
		if re, ok := err.(*errors.RecipeError); ok {
			re.WithDetails(s.details())
		}
		return "", "", err
	}

	target, err := s.TargetPath()
	if err != nil {
		return "", "", err
	}
	return target, rendered, nil
}

// Install renders the template, writes it to the target path and marks the
// file executable. It returns the single path written.
func (s *Script) Install() ([]string, error) {
	done := logging.LogOperationStart(s.logger, "install")
	defer done()

	target, text, err := s.Render()
	if err != nil {
		return nil, err
	}

	if err := s.fs.WriteFile(target, []byte(text), createMode); err != nil {
		return nil, err
	}
	if err := addExecuteBits(s.fs, target); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("template", s.templateName).
		Str("target", target).
		Int("bytes", len(text)).
		Msg("wrote script")

	return []string{target}, nil
}

// Update is identical to Install.
func (s *Script) Update() ([]string, error) {
	return s.Install()
}

// addExecuteBits ORs ExecuteBits into the file's current mode, leaving every
// other bit as it was.
func addExecuteBits(fsys types.FS, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	return fsys.Chmod(path, info.Mode()|ExecuteBits)
}

func (s *Script) buildoutValue(key string) (string, error) {
	section, ok := s.cfg.Section(BuildoutSection)
	if !ok {
		return "", errors.New(errors.ErrConfigInvalid, "missing [buildout] section").
			WithDetail("part", s.name)
	}
	v, ok := section.Get(key)
	if !ok || v == "" {
		return "", errors.Newf(errors.ErrConfigInvalid, "buildout option %s is not set", key).
			WithDetail("part", s.name)
	}
	return v, nil
}
