package main

import (
	"os"
	"path/filepath"
)

var configFileNames = []string{defaultConfigFile, "config.yml", "config.toml"}

// resolveConfigPath returns the --config flag or the first config file found
// in the working directory or ~/.config/livedata.
func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if found := findConfigIn("."); found != "" {
		return found
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if found := findConfigIn(userConfigDir(home)); found != "" {
			return found
		}
	}
	return defaultConfigFile
}

// findConfigIn returns the first known config file name present in dir, or "".
func findConfigIn(dir string) string {
	for _, name := range configFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func userConfigDir(home string) string {
	return filepath.Join(home, ".config", "livedata")
}
