package buildout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/logging"
	"github.com/arthur-debert/binscript/pkg/types"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/ini.v1"
)

// Load reads a configuration file, applies command-line overrides
// ("section:option=value") and then the host defaults relative to the file's
// directory, so overridden paths are anchored like the ones in the file.
func Load(path string, overrides ...string) (*Config, error) {
	logger := logging.GetLogger("buildout")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to resolve %s", path)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
	}

	var sections map[string]types.Section
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".toml":
		sections, err = loadKoanf(abs, toml.Parser())
	case ".yaml", ".yml":
		sections, err = loadKoanf(abs, yaml.Parser())
	default:
		sections, err = loadINI(abs)
	}
	if err != nil {
		return nil, err
	}

	c := New(nil)
	c.sections = sections
	c.path = abs
	if err := c.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	c.applyDefaults(filepath.Dir(abs))

	logger.Debug().
		Str("path", abs).
		Int("sections", len(sections)).
		Strs("parts", c.Parts()).
		Msg("loaded configuration")

	return c, nil
}

func loadINI(path string) (map[string]types.Section, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
		KeyValueDelimiters:         "=",
		PreserveSurroundedQuote:    true,
		IgnoreContinuation:         true,
	}, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}

	sections := make(map[string]types.Section)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		s := make(types.Section, len(sec.Keys()))
		for _, key := range sec.Keys() {
			// Value is the raw text; String would apply ini's own %(x)s interpolation
			s[key.Name()] = key.Value()
		}
		sections[sec.Name()] = s
	}
	return sections, nil
}

func loadKoanf(path string, parser koanf.Parser) (map[string]types.Section, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}

	sections := make(map[string]types.Section)
	for name, raw := range k.Raw() {
		table, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrConfigParse, "%s: top-level key %q is not a section", path, name)
		}
		s := make(types.Section, len(table))
		for key, v := range table {
			str, err := stringify(v)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "%s: option %s:%s", path, name, key)
			}
			s[key] = str
		}
		sections[name] = s
	}
	return sections, nil
}

// stringify flattens a parsed value into buildout's string form. Lists are
// joined with newlines, the way multi-line INI options read.
func stringify(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := stringify(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, "\n"), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("nested tables are not supported (keys: %s)", strings.Join(keys, ", "))
	default:
		return fmt.Sprint(val), nil
	}
}
