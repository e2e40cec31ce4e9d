package buildout

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/types"
)

const (
	SectionName     = "buildout"
	KeyDirectory    = "directory"
	KeyBinDirectory = "bin-directory"
	KeyParts        = "parts"
	KeyRecipe       = "recipe"

	defaultBinDir = "bin"
)

// Config is a loaded buildout configuration.
type Config struct {
	path     string
	sections map[string]types.Section
}

// New creates a configuration from already-resolved sections. Sections are
// copied. No defaults are applied.
func New(sections map[string]types.Section) *Config {
	c := &Config{sections: make(map[string]types.Section, len(sections))}
	for name, s := range sections {
		c.sections[name] = s.Clone()
	}
	return c
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Section returns a copy of the named section.
func (c *Config) Section(name string) (types.Section, bool) {
	s, ok := c.sections[name]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Sections returns the section names, sorted.
func (c *Config) Sections() []string {
	names := make([]string, 0, len(c.sections))
	for name := range c.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns one option, creating the section if needed.
func (c *Config) Set(section, key, value string) {
	s, ok := c.sections[section]
	if !ok {
		s = types.Section{}
		c.sections[section] = s
	}
	s[key] = value
}

// Part returns the options of the named part.
func (c *Config) Part(name string) (types.Section, error) {
	if name == SectionName {
		return nil, errors.Newf(errors.ErrPartNotFound, "%s is not a part", name)
	}
	s, ok := c.Section(name)
	if !ok {
		return nil, errors.Newf(errors.ErrPartNotFound, "part %s is not defined", name).
			WithDetail("part", name)
	}
	return s, nil
}

// Parts returns the parts listed in buildout:parts, in order.
func (c *Config) Parts() []string {
	return c.sections[SectionName].List(KeyParts)
}

// ApplyOverrides sets options given as "section:option=value", the form the
// buildout command line accepts.
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, o := range overrides {
		lhs, value, ok := strings.Cut(o, "=")
		if !ok {
			return errors.Newf(errors.ErrInvalidInput, "invalid override %q, expected section:option=value", o)
		}
		section, key, ok := strings.Cut(strings.TrimSpace(lhs), ":")
		if !ok || section == "" || key == "" {
			return errors.Newf(errors.ErrInvalidInput, "invalid override %q, expected section:option=value", o)
		}
		c.Set(section, key, strings.TrimSpace(value))
	}
	return nil
}

// applyDefaults fills in the [buildout] options the host always provides:
// directory defaults to baseDir, bin-directory to <directory>/bin, and
// relative values are anchored at baseDir and directory respectively.
func (c *Config) applyDefaults(baseDir string) {
	dir := c.sections[SectionName][KeyDirectory]
	switch {
	case dir == "":
		dir = baseDir
	case !filepath.IsAbs(dir):
		dir = filepath.Join(baseDir, dir)
	}
	c.Set(SectionName, KeyDirectory, filepath.Clean(dir))

	bin := c.sections[SectionName][KeyBinDirectory]
	switch {
	case bin == "":
		bin = filepath.Join(dir, defaultBinDir)
	case !filepath.IsAbs(bin):
		bin = filepath.Join(dir, bin)
	}
	c.Set(SectionName, KeyBinDirectory, filepath.Clean(bin))
}

func (c *Config) String() string {
	return fmt.Sprintf("buildout.Config{path=%q, sections=%d}", c.path, len(c.sections))
}
