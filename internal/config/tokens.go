package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storsim/internal/core"
)

// LoadTokens reads the per-account bearer tokens used in connected
// mode. The file is a flat YAML map of account handle to token.
func LoadTokens(path string) (map[core.AccountID]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading tokens: %w", core.ErrConfiguration, err)
	}

	var tokens map[core.AccountID]string
	if err := yaml.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("%w: parsing tokens: %w", core.ErrConfiguration, err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: tokens file %q is empty", core.ErrConfiguration, path)
	}
	return tokens, nil
}
