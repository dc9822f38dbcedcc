// Package config loads the compiler's YAML manifest: module search
// paths, the standard-library location, and emitter options. It mirrors
// the teacher's own YAML-configured resolver manifests, read the same
// way with gopkg.in/yaml.v3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is evanlang2c.yaml's shape; every field has a usable zero value
// so a missing or partial file still produces sane defaults.
// EmitLineDirectives is loaded from the manifest, but the emitter does not
// consult it: no #line directives are emitted.
type Config struct {
	SearchPaths        []string `yaml:"search_paths"`
	StdlibPath         string   `yaml:"stdlib_path"`
	EmitLineDirectives bool     `yaml:"emit_line_directives"`
}

// Default returns the configuration used when no manifest is found: the
// current directory as the sole search path, no stdlib, no #line output.
func Default() *Config {
	return &Config{SearchPaths: []string{"."}}
}

// Load reads path as a YAML manifest. A missing file is not an error: it
// returns Default() unchanged, since evanlang2c.yaml is optional (§4.8).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.SearchPaths) == 0 {
		cfg.SearchPaths = []string{"."}
	}
	return cfg, nil
}
