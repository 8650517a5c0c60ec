package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codebind/internal/types"
	"github.com/standardbeagle/codebind/internal/watcher"
)

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if !cfg.Watch.Enabled {
		return fmt.Errorf("watching is disabled in the configuration")
	}

	env, err := buildEnvironment(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Watching %s (%d bindings)\n", cfg.Project.Root, env.service.Len())

	env.service.SubscribeFileUpdated(func(f *types.ProjectFile) {
		b := env.service.Binding(f)
		rel := relToRoot(cfg.Project.Root, f.Path)
		switch {
		case b.IsZero():
			fmt.Printf("- %s\n", rel)
		case b.IsUnresolved():
			fmt.Printf("? %s -> %s\n", rel, b.FullName())
		default:
			fmt.Printf("+ %s -> %s\n", rel, b.FullName())
		}
	})

	w, err := watcher.New(cfg, env.scanner, env.model)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("Shutting down...")
	return w.Stop()
}
