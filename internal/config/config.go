package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the repository root.
const FileName = "viewbindmigrate.yaml"

// Config represents the viewbindmigrate.yaml configuration.
type Config struct {
	Repo           string              `yaml:"repo"`
	Ignore         []string            `yaml:"ignore"`
	Layout         LayoutConfig        `yaml:"layout"`
	Imports        ImportsConfig       `yaml:"imports"`
	CellInterface  string              `yaml:"cell_interface"`
	Handlers       []string            `yaml:"handlers"`
	BindingImports bool                `yaml:"binding_imports"`
	Namespace      string              `yaml:"namespace"`
	Supertypes     map[string][]string `yaml:"supertypes"`
	Workers        int                 `yaml:"workers"`
	Output         OutputConfig        `yaml:"output"`
}

// LayoutConfig locates layout resources relative to a source file.
type LayoutConfig struct {
	MainDir   string `yaml:"main_dir"`
	LayoutDir string `yaml:"layout_dir"`
}

// ImportsConfig names the functions the generated code depends on.
type ImportsConfig struct {
	ActivityDelegate string `yaml:"activity_delegate"`
	FragmentDelegate string `yaml:"fragment_delegate"`
	InflateHelper    string `yaml:"inflate_helper"`
	CellViewBinding  string `yaml:"cell_view_binding"`
}

// OutputConfig controls where and how output artifacts are generated.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Report bool   `yaml:"report"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			".git/**",
			".gradle/**",
			".idea/**",
			"build/**",
			"**/build/**",
			".viewbindmigrate/**",
		},
		Layout: LayoutConfig{
			MainDir:   "src/main",
			LayoutDir: "res/layout",
		},
		Imports: ImportsConfig{
			ActivityDelegate: "android.viewbinding.library.activity.viewBinding",
			FragmentDelegate: "android.viewbinding.library.fragment.viewBinding",
			InflateHelper:    "ru.hh.shared.core.ui.design_system.utils.widget.inflateAndBindView",
			CellViewBinding:  "ru.hh.shared.core.ui.cells_framework.cells.getViewBinding",
		},
		CellInterface:  "ru.hh.shared.core.ui.cells_framework.cells.interfaces.Cell",
		Handlers:       []string{"cell"},
		BindingImports: true,
		Workers:        8,
		Output: OutputConfig{
			Dir:    ".viewbindmigrate",
			Report: true,
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	def := Default()
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Layout.MainDir == "" {
		cfg.Layout.MainDir = def.Layout.MainDir
	}
	if cfg.Layout.LayoutDir == "" {
		cfg.Layout.LayoutDir = def.Layout.LayoutDir
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	return cfg, nil
}

// IsHandlerEnabled returns true if the named custom handler is enabled.
func (c *Config) IsHandlerEnabled(name string) bool {
	return contains(c.Handlers, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
