package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover returns the configuration files for a run. An explicit path wins;
// otherwise ~/.vcspull.yaml and every YAML file under
// $XDG_CONFIG_HOME/vcspull/ are read, in that order.
func Discover(explicit string) ([]string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return []string{explicit}, nil
	}

	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".vcspull.yaml")
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}

	if dir := configHome(); dir != "" {
		var found []string
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, _ := filepath.Glob(filepath.Join(dir, "vcspull", pattern))
			found = append(found, matches...)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration found (looked for ~/.vcspull.yaml and %s)", filepath.Join(configHome(), "vcspull"))
	}
	return paths, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
