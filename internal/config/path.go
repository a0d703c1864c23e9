package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir  = "ossctl"
	DefaultConfigName = "config.yaml"
	DefaultDotEnv     = ".env"
)

const EnvConfigPath = "OSSCTL_CONFIG"

func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, DefaultConfigDir, DefaultConfigName)
}

func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath()
}
