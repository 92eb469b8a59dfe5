package config

import (
	"fmt"
	"os"

	"github.com/yndnr/diskemb-go/internal/infra/confloader"
)

// Load loads CLI configuration. Defaults are overridden by the YAML file
// at path (if given and present), which is overridden by DISKEMB_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	loader := confloader.NewLoader()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loader.LoadFile(path); err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}
	if err := loader.LoadEnv(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
