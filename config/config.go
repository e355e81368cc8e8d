package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlBrand represents a tracked brand from TOML
type TomlBrand struct {
	Id          string   `toml:"id"`
	DisplayName string   `toml:"display_name"`
	Query       []string `toml:"query"`
	Exclude     []string `toml:"exclude,omitempty"`
}

// TomlCollector holds firehose collector configuration
type TomlCollector struct {
	Hosts    []string `toml:"hosts,omitempty"`
	Compress bool     `toml:"compress,omitempty"`
	Workers  int      `toml:"workers,omitempty"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Brands    []TomlBrand   `toml:"brands"`
	Collector TomlCollector `toml:"collector"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *TomlConfig) error {
	seen := make(map[string]bool)
	for _, brand := range config.Brands {
		if brand.Id == "" {
			return fmt.Errorf("brand with display name %q is missing an id", brand.DisplayName)
		}
		if seen[brand.Id] {
			return fmt.Errorf("duplicate brand id %q", brand.Id)
		}
		seen[brand.Id] = true
		if len(brand.Query) == 0 {
			return fmt.Errorf("brand %q has no query terms", brand.Id)
		}
	}
	return nil
}
