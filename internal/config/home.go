package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome overrides the state directory.
const EnvHome = "DELEGATE_HOME"

// DefaultHomeDir is the state directory used when EnvHome is unset,
// relative to the working directory.
const DefaultHomeDir = ".delegate"

// HomeDir returns the delegate state directory without creating it.
// Priority order:
//  1. DELEGATE_HOME environment variable (if set)
//  2. .delegate under the current working directory
func HomeDir() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	return DefaultHomeDir
}

// EnsureHome returns HomeDir after creating it.
func EnsureHome() (string, error) {
	home := HomeDir()
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create delegate home directory: %w", err)
	}
	return home, nil
}

// DefaultConfigPath is $DELEGATE_HOME/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}
