package config

import (
	"os"
	"path/filepath"
)

// EnvConfig overrides the configuration file location.
const EnvConfig = "TREETICK_CONFIG"

// Path returns $TREETICK_CONFIG if set, otherwise ~/.treetick/config.
func Path() (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".treetick", "config"), nil
}
