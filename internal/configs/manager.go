package configs

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

// LoadSources layers the sources over DefaultConfig. The last source loaded
// wins.
func LoadSources(sources ...*Source) (Config, error) {
	k := koanf.New(".")
	if err := LoadStruct(k, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, source := range sources {
		if err := k.Load(source.Provider(k), source.Parser, source.Options...); err != nil {
			return Config{}, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
