// Package config loads vcspull YAML configuration files and resolves them
// into validated repository descriptors. Top-level keys are base directories;
// each maps repository names to an upstream declaration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one declared repository: either a bare `vcs+url` string or a
// mapping with url, extra remotes and post-update shell hooks.
type Entry struct {
	URL     string
	Remotes map[string]string
	Hooks   []string
}

// UnmarshalYAML accepts the string shorthand and the expanded mapping form,
// where `repo` and `url` are synonyms.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.URL)
	}
	var full struct {
		Repo    string            `yaml:"repo"`
		URL     string            `yaml:"url"`
		Remotes map[string]string `yaml:"remotes"`
		Hooks   []string          `yaml:"shell_command_after"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	e.URL = full.URL
	if e.URL == "" {
		e.URL = full.Repo
	}
	e.Remotes = full.Remotes
	e.Hooks = full.Hooks
	return nil
}

// Config is the merged raw configuration: base directory -> name -> entry.
type Config map[string]map[string]Entry

// Load reads, schema-checks and decodes every file, merging them in order.
// A base directory may appear in several files; a repository name may not
// repeat within one base directory.
func Load(paths []string) (Config, error) {
	merged := Config{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: invalid yaml: %v", p, err)
		}
		if raw == nil {
			continue
		}
		if err := validateRaw(p, raw); err != nil {
			return nil, err
		}

		var one Config
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&one); err != nil {
			return nil, fmt.Errorf("%s: invalid config: %v", p, err)
		}
		for base, repos := range one {
			if merged[base] == nil {
				merged[base] = map[string]Entry{}
			}
			for name, entry := range repos {
				if _, dup := merged[base][name]; dup {
					return nil, fmt.Errorf("%s: repository %s declared twice under %s", p, name, base)
				}
				merged[base][name] = entry
			}
		}
	}
	return merged, nil
}
