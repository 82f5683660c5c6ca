package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable shroud reads.
const EnvPrefix = "SHROUD_"

type Source struct {
	Provider func(k *koanf.Koanf) koanf.Provider
	Parser   koanf.Parser
	Options  []koanf.Option
}

// NewTOMLFileSource reads a shroud.toml. Unknown keys are rejected so typos
// don't silently fall back to defaults.
func NewTOMLFileSource(fs afero.Fs, path string) *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return &tomlFile{fs: fs, path: path}
		},
		Parser: kjson.Parser(),
	}
}

// NewEnvVarSource maps SHROUD_KEY_PATH to key_path. A double underscore
// becomes a key delimiter. List keys are split on commas.
func NewEnvVarSource() *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
				key = strings.TrimPrefix(key, EnvPrefix)
				key = strings.ToLower(key)
				key = strings.ReplaceAll(key, "__", ".")
				if !isKey(key) {
					return "", nil
				}
				for _, lk := range listKeys {
					if key == lk {
						return key, splitList(value)
					}
				}
				return key, value
			})
		},
	}
}

// NewPFlagSource maps --key-path to key_path. Flags the user did not set only
// fill keys no earlier source provided.
func NewPFlagSource(flagSet *pflag.FlagSet) *Source {
	return &Source{
		Provider: func(k *koanf.Koanf) koanf.Provider {
			return posflag.ProviderWithFlag(flagSet, ".", k, func(f *pflag.Flag) (string, interface{}) {
				key := strings.ReplaceAll(f.Name, "-", "_")
				if !isKey(key) {
					return "", nil
				}
				return key, flagValue(flagSet, f)
			})
		},
	}
}

func LoadStruct(k *koanf.Koanf, config Config) error {
	// Going through JSON keeps omitempty, so zero fields don't mask
	// values that are already loaded.
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to json: %w", err)
	}

	if err := k.Load(rawbytes.Provider(raw), kjson.Parser()); err != nil {
		return fmt.Errorf("failed to load config from json bytes: %w", err)
	}

	return nil
}

// tomlFile decodes TOML into a generic map and hands koanf the JSON encoding,
// which keeps explicit zero values such as max_depth = 0.
type tomlFile struct {
	fs   afero.Fs
	path string
}

func (t *tomlFile) ReadBytes() ([]byte, error) {
	data, err := afero.ReadFile(t.fs, t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.path, err)
	}

	var typed Config
	md, err := toml.Decode(string(data), &typed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", t.path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, u := range undecoded {
			keys[i] = u.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", t.path, strings.Join(keys, ", "))
	}

	var generic map[string]interface{}
	if _, err := toml.Decode(string(data), &generic); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", t.path, err)
	}

	return json.Marshal(generic)
}

func (t *tomlFile) Read() (map[string]interface{}, error) {
	return nil, errors.New("toml file provider does not support this method")
}

func flagValue(flagSet *pflag.FlagSet, f *pflag.Flag) interface{} {
	switch f.Value.Type() {
	case "int":
		v, _ := flagSet.GetInt(f.Name)
		return v
	case "bool":
		v, _ := flagSet.GetBool(f.Name)
		return v
	case "stringSlice":
		v, _ := flagSet.GetStringSlice(f.Name)
		return v
	case "stringArray":
		v, _ := flagSet.GetStringArray(f.Name)
		return v
	default:
		return f.Value.String()
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
