package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codebind/internal/binding"
	"github.com/standardbeagle/codebind/internal/config"
	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/project"
	"github.com/standardbeagle/codebind/internal/provider"
	"github.com/standardbeagle/codebind/internal/resolver"
	"github.com/standardbeagle/codebind/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.Load(c.String("root"))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Scan.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, excludeFlags...)
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = filepath.ToSlash(absRoot)
	}
	if rulesFlag := c.String("rules"); rulesFlag != "" {
		cfg.Providers.RuleFile = rulesFlag
	}

	return cfg, config.ValidateConfig(cfg)
}

// environment is the fully wired binding stack for one project root.
type environment struct {
	cfg      *config.Config
	registry *provider.Registry
	service  *binding.Service
	model    *project.Model
	scanner  *project.Scanner
}

// buildEnvironment wires providers, resolver, table, and model, then scans
// and opens the collection.
func buildEnvironment(cfg *config.Config) (*environment, error) {
	registry := provider.NewRegistry()
	if cfg.Providers.Xaml {
		if err := registry.Add(provider.NewXamlProvider()); err != nil {
			return nil, err
		}
	}
	if cfg.Providers.AspNet {
		if err := registry.Add(provider.NewAspNetProvider()); err != nil {
			return nil, err
		}
	}
	if cfg.Providers.RuleFile != "" {
		rules, err := provider.LoadRuleProvider(cfg.Providers.RuleFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule file %s: %w", cfg.Providers.RuleFile, err)
		}
		if err := registry.Add(rules); err != nil {
			return nil, err
		}
	}

	res := resolver.New(cfg.Resolver.SuggestThreshold, cfg.Resolver.Workers)
	table := binding.NewTable(registry, res)
	service := binding.NewService(table, res)

	model := project.NewModel()
	model.AddListener(service)

	scanner := project.NewScanner(cfg)
	coll, err := scanner.Scan()
	if err != nil {
		return nil, err
	}
	model.OpenCollection(coll)

	return &environment{
		cfg:      cfg,
		registry: registry,
		service:  service,
		model:    model,
		scanner:  scanner,
	}, nil
}

func main() {
	app := &cli.App{
		Name:                   "codebind",
		Usage:                  "Code-behind binding tracker for markup-based projects",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a .codebind.kdl configuration file",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (defaults to the current directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.xaml')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/Generated/**')",
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "Rule file with glob->class-template bindings (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				os.Setenv("DEBUG", "1")
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:    "scan",
				Aliases: []string{"s"},
				Usage:   "Scan the project once and print its code-behind bindings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "unresolved-only",
						Usage: "Only show bindings whose class could not be resolved",
					},
				},
				Action: scanCommand,
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Scan, then keep the binding table live as files change",
				Action:  watchCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the binding table over MCP on stdio",
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
