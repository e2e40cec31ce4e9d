package buildout

import (
	"reflect"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Settings is the typed view of the [buildout] section.
type Settings struct {
	Directory    string   `koanf:"directory"`
	BinDirectory string   `koanf:"bin-directory"`
	Parts        []string `koanf:"parts"`
}

// Settings decodes the [buildout] section.
func (c *Config) Settings() (*Settings, error) {
	section, ok := c.Section(SectionName)
	if !ok {
		return nil, errors.New(errors.ErrConfigInvalid, "missing [buildout] section")
	}

	raw := make(map[string]interface{}, len(section))
	for k, v := range section {
		raw[k] = v
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to load [buildout] section")
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook:       fieldsHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to decode [buildout] section")
	}
	return &s, nil
}

// fieldsHookFunc splits whitespace-separated strings into slices.
func fieldsHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice {
			return data, nil
		}
		return strings.Fields(data.(string)), nil
	}
}
