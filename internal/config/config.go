package config

import (
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	Version   int
	Project   Project
	Scan      Scan
	Watch     Watch
	Resolver  Resolver
	Providers Providers
}

type Project struct {
	Root string
	Name string
}

type Scan struct {
	Include        []string // doublestar patterns; empty means include everything
	Exclude        []string // doublestar patterns applied after Include
	FollowSymlinks bool
	MaxFileSize    int64 // files larger than this are skipped entirely
}

type Watch struct {
	Enabled    bool
	DebounceMs int // debounce window for file change events
}

type Resolver struct {
	Workers          int     // parallel parse workers for the initial scan; 0 = NumCPU
	SuggestThreshold float64 // minimum Jaro-Winkler similarity for FQN suggestions
}

type Providers struct {
	Xaml     bool   // WPF-style x:Class detection for .xaml files
	AspNet   bool   // <%@ ... Inherits %> detection for .aspx/.ascx/.master
	RuleFile string // optional codebehind.rules.toml with glob->template rules
}

// Default returns the configuration used when no .codebind.kdl is present.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		Version: 1,
		Project: Project{Root: cwd},
		Scan: Scan{
			Include:     []string{},
			Exclude:     []string{"**/bin/**", "**/obj/**", "**/.git/**", "**/node_modules/**"},
			MaxFileSize: 10 * 1024 * 1024,
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: 300,
		},
		Resolver: Resolver{
			Workers:          runtime.NumCPU(),
			SuggestThreshold: 0.85,
		},
		Providers: Providers{
			Xaml:   true,
			AspNet: true,
		},
	}
}

// Load reads configuration for the given project directory. A missing
// .codebind.kdl is not an error; defaults are returned with Project.Root
// pointed at the directory.
func Load(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	cfg, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
		if abs, err := filepath.Abs(searchDir); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = searchDir
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from an explicit KDL file path. Unlike Load,
// a missing file is an error.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadKDLFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
